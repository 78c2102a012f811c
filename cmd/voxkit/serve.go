package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/voxkit/bootstrap"
	"github.com/kbukum/voxkit/server"
	"github.com/kbukum/voxkit/server/endpoint"
	"github.com/kbukum/voxkit/util"
	"github.com/kbukum/voxkit/version"
)

type serveOptions struct {
	host       string
	port       int
	backend    string
	model      string
	whisperURL string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transcription API",
		Long: `Run the HTTP transcription API.

Endpoints:
  POST /transcribe   multipart upload in field "file"; query parameters
                     translate, diarize, diarize_threshold, max_speakers,
                     use_silhouette and language
  GET  /health       component status, device and Whisper backend
  GET  /alive        liveness probe
  GET  /ready        readiness probe
  GET  /version      build information

The Whisper sidecar must be reachable at startup. The speaker embedding
sidecar is optional; without it diarization requests are answered with
unattributed lines and a warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			o.apply(cmd.Flags().Changed, cfg)

			app, _, err := newServer(cfg, bootstrap.WithSummaryWriter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.host, "host", "0.0.0.0", "listen address")
	f.IntVar(&o.port, "port", 8000, "listen port")
	f.StringVar(&o.backend, "whisper-backend", "", "Whisper implementation: openai-whisper or transformers")
	f.StringVar(&o.model, "model", "", "Whisper model size")
	f.StringVar(&o.whisperURL, "whisper-url", "", "Whisper sidecar URL")
	return cmd
}

func (o *serveOptions) apply(changed func(string) bool, cfg *AppConfig) {
	if changed("host") {
		cfg.Server.Host = o.host
	}
	if changed("port") {
		cfg.Server.Port = o.port
	}
	if changed("whisper-backend") {
		cfg.Whisper.Backend = o.backend
	}
	if changed("model") {
		cfg.Whisper.Model = o.model
	}
	if changed("whisper-url") {
		cfg.Whisper.URL = o.whisperURL
	}
}

// newServer builds the app with the Whisper model preloaded and the HTTP
// server registered as the last component, so it only starts listening once
// the sidecars are up.
func newServer(cfg *AppConfig, opts ...bootstrap.Option) (*bootstrap.App[*AppConfig], *server.Server, error) {
	app, svc, err := newApp(cfg, appMode{preload: true, embeddings: true}, opts...)
	if err != nil {
		return nil, nil, err
	}

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware()
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, nil, err
	}

	srv.RegisterDefaultEndpoints(server.Probes{
		Service: cfg.Name,
		Version: util.Coalesce(cfg.Version, version.Get().Version),
		Details: map[string]string{
			"device":          cfg.Whisper.Device,
			"whisper_backend": cfg.Whisper.Backend,
			"whisper_model":   cfg.Whisper.Model,
		},
		Health: app.Components.Checkers(),
		Ready:  app.ReadyCheck,
	})
	srv.RegisterTranscribe(svc.pipeline, endpoint.TranscribeOptions{
		Storage:     svc.store,
		Diarization: cfg.Diarization,
	})
	return app, srv, nil
}
