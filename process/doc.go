// Package process runs external tools such as ffmpeg as subprocesses with
// context cancellation, process-group termination and captured output.
package process
