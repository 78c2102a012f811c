// Package transcript runs the voice-to-text pipeline: speech recognition,
// optional speaker diarization and an optional English translation pass
// aligned to the diarized speakers. It renders the result in the plain
// text layout used by the CLI and the HTTP server and saves it through a
// storage backend.
//
//	p, err := transcript.NewPipeline(transcript.Options{
//		ASR:       transcript.Unloaded{Name: "base"},
//		Manager:   asrManager,
//		Embedding: speechbrainProvider,
//		Loader:    audio.NewLoader(audio.Config{}),
//	})
//	t, err := p.Run(ctx, transcript.Request{AudioPath: "meeting.m4a", Diarize: true})
//	fmt.Println(t.Render())
package transcript
