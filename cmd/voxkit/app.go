package main

import (
	"context"
	"fmt"

	"github.com/kbukum/voxkit/audio"
	"github.com/kbukum/voxkit/bootstrap"
	"github.com/kbukum/voxkit/component"
	"github.com/kbukum/voxkit/embedding"
	"github.com/kbukum/voxkit/embedding/speechbrain"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/storage"
	_ "github.com/kbukum/voxkit/storage/local"
	"github.com/kbukum/voxkit/transcript"
	"github.com/kbukum/voxkit/transcription"
	"github.com/kbukum/voxkit/transcription/whisper"
	"github.com/kbukum/voxkit/util"
	"github.com/kbukum/voxkit/version"
)

// appMode selects how the speech recognition model is brought up.
type appMode struct {
	// preload starts the Whisper sidecar as a required component so the
	// process refuses to start without it. Otherwise the model is created
	// on first use through the provider manager.
	preload bool
	// embeddings registers the speaker embedding sidecar.
	embeddings bool
}

// services are the pieces commands use once the app is running.
type services struct {
	pipeline *transcript.Pipeline
	store    storage.Storage
}

// newApp builds the application and its transcript pipeline. Nothing talks
// to a sidecar until the app is run.
func newApp(cfg *AppConfig, mode appMode, opts ...bootstrap.Option) (*bootstrap.App[*AppConfig], *services, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	serviceVersion := util.Coalesce(cfg.Version, version.Get().Version)

	var shutdownTelemetry observability.ShutdownFunc
	app.OnStart(func(ctx context.Context) error {
		fn, err := observability.Setup(ctx, cfg.Observability, observability.Resource{
			ServiceName:    cfg.Name,
			ServiceVersion: serviceVersion,
			Environment:    cfg.Environment,
		})
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		shutdownTelemetry = fn
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		if shutdownTelemetry == nil {
			return nil
		}
		return shutdownTelemetry(ctx)
	})

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}

	store, err := storage.New(cfg.Storage, app.Logger)
	if err != nil {
		return nil, nil, err
	}

	manager := transcription.NewManager()
	manager.Register(whisper.ProviderName, whisper.Factory())
	app.OnStop(manager.Shutdown)

	var asr transcript.ModelRef = transcript.Unloaded{
		Name:     cfg.Whisper.Model,
		Provider: whisper.ProviderName,
		Config:   whisperSettings(cfg.Whisper),
	}
	if mode.preload {
		p, err := whisper.NewProvider(cfg.Whisper)
		if err != nil {
			return nil, nil, err
		}
		if err := app.RegisterComponent(component.NewProviderComponent(whisper.ProviderName, p,
			component.WithDescription(component.Description{
				Name:    "Whisper",
				Type:    "asr",
				Details: fmt.Sprintf("%s model=%s backend=%s device=%s", cfg.Whisper.URL, cfg.Whisper.Model, cfg.Whisper.Backend, cfg.Whisper.Device),
			}))); err != nil {
			return nil, nil, err
		}
		asr = transcript.Loaded{Provider: p}
	}

	var emb embedding.Provider
	if mode.embeddings {
		p, err := speechbrain.NewProvider(cfg.Embedding)
		if err != nil {
			return nil, nil, err
		}
		if err := app.RegisterComponent(component.NewProviderComponent(speechbrain.ProviderName, p,
			component.Optional(),
			component.WithDescription(component.Description{
				Name:    "ECAPA-TDNN",
				Type:    "embedding",
				Details: fmt.Sprintf("%s device=%s", cfg.Embedding.URL, cfg.Embedding.Device),
			}))); err != nil {
			return nil, nil, err
		}
		emb = p
	}

	retry := cfg.Retry
	pipeline, err := transcript.NewPipeline(transcript.Options{
		ASR:       asr,
		Manager:   manager,
		Embedding: emb,
		Loader:    audio.NewLoader(cfg.Audio),
		Metrics:   metrics,
		Retry:     &retry,
	})
	if err != nil {
		return nil, nil, err
	}

	// Resolve the model before any work is accepted so a missing sidecar
	// fails startup rather than the first request.
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
		a.Logger.Info("loading speech recognition model", logger.Fields(
			"model", cfg.Whisper.Model,
			"backend", cfg.Whisper.Backend,
			"device", cfg.Whisper.Device,
		))
		_, err := pipeline.ASR(ctx)
		return err
	})

	return app, &services{pipeline: pipeline, store: store}, nil
}
