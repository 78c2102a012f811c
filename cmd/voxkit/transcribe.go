package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/voxkit/diarization"
	"github.com/kbukum/voxkit/transcript"
	"github.com/kbukum/voxkit/transcription/whisper"
)

const bannerWidth = 52

type transcribeOptions struct {
	model         string
	language      string
	translate     bool
	diarize       bool
	threshold     float64
	maxSpeakers   int
	useSilhouette bool
	backend       string
	whisperURL    string
	embeddingURL  string
	outputDir     string
}

func newTranscribeCmd(root *rootOptions) *cobra.Command {
	o := &transcribeOptions{}
	cmd := &cobra.Command{
		Use:   "transcribe <input>",
		Short: "Transcribe an audio or video file",
		Long: `Transcribe an audio or video file and save the transcript.

Anything ffmpeg can decode is accepted. The transcript is printed and saved
as <input name>_<timestamp>.txt under the storage directory (transcripts/
by default).

Speaker count selection with --diarize:
  --max-speakers N     exactly N speakers
  --use-silhouette     pick the count with the best silhouette score
  otherwise            merge clusters closer than --diarize-threshold

Examples:
  voxkit transcribe meeting.mp4
  voxkit transcribe call.wav --diarize --max-speakers 2 --translate
  voxkit transcribe talk.mp3 --model small --whisper-backend transformers`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, root, o, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.model, "model", "base", "Whisper model size (tiny, base, small, medium, large)")
	f.StringVarP(&o.language, "language", "l", "", "source language hint, detected when empty")
	f.BoolVar(&o.translate, "translate", false, "append an English translation")
	f.BoolVar(&o.diarize, "diarize", false, "prefix lines with the speaker")
	f.Float64Var(&o.threshold, "diarize-threshold", diarization.DefaultDistanceThreshold, "cosine distance below which speaker clusters merge")
	f.IntVar(&o.maxSpeakers, "max-speakers", 0, "fixed number of speakers")
	f.BoolVar(&o.useSilhouette, "use-silhouette", false, "choose the speaker count by silhouette score")
	f.StringVar(&o.backend, "whisper-backend", whisper.BackendOpenAI, "Whisper implementation: openai-whisper or transformers")
	f.StringVar(&o.whisperURL, "whisper-url", "", "Whisper sidecar URL")
	f.StringVar(&o.embeddingURL, "embedding-url", "", "speaker embedding sidecar URL")
	f.StringVarP(&o.outputDir, "output-dir", "o", "", "directory transcripts are saved to")
	return cmd
}

// apply copies the flags the user set onto cfg.
func (o *transcribeOptions) apply(changed func(string) bool, cfg *AppConfig) {
	if changed("model") {
		cfg.Whisper.Model = o.model
	}
	if changed("language") {
		cfg.Whisper.Language = o.language
	}
	if changed("whisper-backend") {
		cfg.Whisper.Backend = o.backend
	}
	if changed("whisper-url") {
		cfg.Whisper.URL = o.whisperURL
	}
	if changed("embedding-url") {
		cfg.Embedding.URL = o.embeddingURL
	}
	if changed("diarize-threshold") {
		cfg.Diarization.DistanceThreshold = o.threshold
	}
	if changed("max-speakers") {
		cfg.Diarization.MaxSpeakers = o.maxSpeakers
	}
	if changed("use-silhouette") {
		cfg.Diarization.UseSilhouette = o.useSilhouette
	}
	if changed("output-dir") {
		cfg.Storage.BasePath = o.outputDir
	}
}

func runTranscribe(cmd *cobra.Command, root *rootOptions, o *transcribeOptions, input string) error {
	if info, err := os.Stat(input); err != nil || info.IsDir() {
		return fmt.Errorf("File '%s' not found.", input)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	o.apply(cmd.Flags().Changed, cfg)
	if cfg.Logging.Level == "" {
		// Logs share the terminal with the transcript.
		cfg.Logging.Level = "warn"
	}

	app, svc, err := newApp(cfg, appMode{embeddings: o.diarize})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var (
		tr    *transcript.Transcript
		saved string
	)
	err = app.RunTask(cmd.Context(), func(ctx context.Context) error {
		fmt.Fprintf(cmd.ErrOrStderr(), "[*] Transcribing %s\n", input)
		var err error
		tr, err = svc.pipeline.Run(ctx, transcript.Request{
			AudioPath:   input,
			Language:    cfg.Whisper.Language,
			Translate:   o.translate,
			Diarize:     o.diarize,
			Diarization: cfg.Diarization,
		})
		if err != nil {
			return err
		}
		saved, err = transcript.Save(ctx, svc.store, tr.Render(), transcript.UniqueFilename(input, time.Now()))
		return err
	})
	if err != nil {
		return err
	}

	for _, w := range tr.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "[!] %s\n", w)
	}
	return printTranscript(out, tr.Render(), saved)
}

func printTranscript(w io.Writer, text, savedTo string) error {
	rule := strings.Repeat("=", 20)
	_, err := fmt.Fprintf(w, "\n%s TRANSCRIPT %s\n%s\n%s\n\n[*] Transcript saved to: %s\n",
		rule, rule, text, strings.Repeat("=", bannerWidth), savedTo)
	return err
}
