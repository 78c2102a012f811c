// Command voxkit transcribes recordings with an optional speaker-labelling
// and English translation pass.
//
// Usage:
//
//	voxkit [flags] <command> [args]
//
// Commands:
//
//	transcribe  - Transcribe one audio or video file and save the transcript
//	serve       - Run the HTTP API (POST /transcribe, GET /health)
//	transcripts - List, show or delete saved transcripts
//	version     - Print build information
//
// Configuration:
//
//	Settings are read from ./cmd/voxkit/config.yml, ./config/voxkit.yml,
//	./config/config.yml or ./config.yml, then VOXKIT_* environment
//	variables, then WHISPER_BACKEND and WHISPER_MODEL, then flags.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
