// Package audio decodes recordings into mono sample buffers at a canonical
// rate.
//
// PCM WAV files are decoded with go-audio/wav. Other containers are converted
// with ffmpeg first. Clips at a different rate are resampled with
// go-audio-resampling.
//
//	loader := audio.NewLoader(audio.Config{SampleRate: 16000})
//	clip, err := loader.Load(ctx, "meeting.m4a")
//	samples := clip.Slice(12.5, 14.0)
package audio
