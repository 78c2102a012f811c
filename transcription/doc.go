// Package transcription defines the speech-recognition provider interface
// and the segment types it returns.
//
// Backends live in subpackages and are selected at runtime through the
// provider registry:
//
//   - transcription/whisper: Whisper HTTP sidecar (openai-whisper or
//     transformers backend)
//
// # Usage
//
//	mgr := transcription.NewManager()
//	mgr.Register(whisper.ProviderName, whisper.Factory())
//	asr, err := mgr.Initialize(ctx, whisper.ProviderName, cfg)
//	resp, err := asr.Transcribe(ctx, transcription.TranscriptionRequest{
//	    AudioPath: "meeting.wav",
//	    Task:      transcription.TaskTranslate,
//	})
package transcription
