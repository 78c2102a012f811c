package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Name != "voxkit" || cfg.Environment != "development" {
		t.Errorf("service = %s/%s", cfg.Name, cfg.Environment)
	}
	if cfg.Whisper.Model != "base" || cfg.Whisper.Backend != "openai-whisper" {
		t.Errorf("whisper = %+v", cfg.Whisper)
	}
	if cfg.Diarization.DistanceThreshold != 0.35 || cfg.Audio.SampleRate != 16000 {
		t.Errorf("threshold = %v, sample rate = %d", cfg.Diarization.DistanceThreshold, cfg.Audio.SampleRate)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8000 || cfg.Server.MaxBodySize != "100MB" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Storage.BasePath != "transcripts" {
		t.Errorf("storage base path = %q", cfg.Storage.BasePath)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("retry attempts = %d", cfg.Retry.MaxAttempts)
	}
}

func TestAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"backend", func(c *AppConfig) { c.Whisper.Backend = "faster-whisper" }},
		{"workers", func(c *AppConfig) { c.Diarization.Workers = 100 }},
		{"body size", func(c *AppConfig) { c.Server.MaxBodySize = "lots" }},
		{"environment", func(c *AppConfig) { c.Environment = "qa" }},
		{"embedding url", func(c *AppConfig) { c.Embedding.URL = "not a url" }},
		{"jitter", func(c *AppConfig) { c.Retry.Jitter = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &AppConfig{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, `
whisper:
  model: small
  backend: transformers
  timeout: 90s
diarization:
  distance_threshold: 0.5
`)
	t.Setenv("VOXKIT_DIARIZATION_MAX_SPEAKERS", "3")
	t.Setenv("WHISPER_MODEL", `"medium"`)
	t.Setenv("WHISPER_BACKEND", "")

	cfg, err := loadConfig(&rootOptions{configFile: path, verbose: true})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Whisper.Model != "medium" {
		t.Errorf("model = %q, want WHISPER_MODEL to win", cfg.Whisper.Model)
	}
	if cfg.Whisper.Backend != "transformers" {
		t.Errorf("backend = %q, empty WHISPER_BACKEND should not override", cfg.Whisper.Backend)
	}
	if cfg.Whisper.Timeout.Seconds() != 90 {
		t.Errorf("timeout = %v", cfg.Whisper.Timeout)
	}
	if cfg.Diarization.DistanceThreshold != 0.5 || cfg.Diarization.MaxSpeakers != 3 {
		t.Errorf("diarization = %+v", cfg.Diarization)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug with --verbose", cfg.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := loadConfig(&rootOptions{configFile: filepath.Join(t.TempDir(), "nope.yml")}); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestTranscribeOptions_Apply(t *testing.T) {
	o := &transcribeOptions{
		model:       "large",
		backend:     "transformers",
		threshold:   0.6,
		maxSpeakers: 4,
		outputDir:   "out",
	}
	set := map[string]bool{"model": true, "max-speakers": true, "output-dir": true}

	cfg := &AppConfig{}
	cfg.Whisper.Backend = "openai-whisper"
	cfg.Diarization.DistanceThreshold = 0.35
	o.apply(func(name string) bool { return set[name] }, cfg)

	if cfg.Whisper.Model != "large" || cfg.Diarization.MaxSpeakers != 4 || cfg.Storage.BasePath != "out" {
		t.Errorf("changed flags not applied: %+v", cfg)
	}
	if cfg.Whisper.Backend != "openai-whisper" || cfg.Diarization.DistanceThreshold != 0.35 {
		t.Error("unchanged flags overrode config")
	}
}

func TestWhisperSettings(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	m := whisperSettings(cfg.Whisper)
	if m["model"] != "base" || m["backend"] != "openai-whisper" || m["url"] != cfg.Whisper.URL {
		t.Errorf("settings = %v", m)
	}
}
