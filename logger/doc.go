// Package logger provides structured logging for voxkit using zerolog.
//
// Loggers are component scoped and emit either JSON or a coloured console
// format. Logs go to stderr by default so CLI output on stdout stays clean.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("diarization")
//	log.Info("clustered", logger.Fields(logger.FieldSpeakers, 2))
package logger
