package main

import (
	"fmt"
	"os"

	"github.com/kbukum/voxkit/audio"
	"github.com/kbukum/voxkit/config"
	"github.com/kbukum/voxkit/diarization"
	"github.com/kbukum/voxkit/embedding/speechbrain"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/resilience"
	"github.com/kbukum/voxkit/server"
	"github.com/kbukum/voxkit/storage"
	"github.com/kbukum/voxkit/transcription/whisper"
	"github.com/kbukum/voxkit/util"
	"github.com/kbukum/voxkit/validation"
	"github.com/kbukum/voxkit/version"
)

// AppConfig is the full voxkit configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Whisper       whisper.Config         `yaml:"whisper" mapstructure:"whisper"`
	Embedding     speechbrain.Config     `yaml:"embedding" mapstructure:"embedding"`
	Diarization   diarization.Config     `yaml:"diarization" mapstructure:"diarization"`
	Audio         audio.Config           `yaml:"audio" mapstructure:"audio"`
	Storage       storage.Config         `yaml:"storage" mapstructure:"storage"`
	Server        server.Config          `yaml:"server" mapstructure:"server"`
	Retry         resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Embedding.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()

	def := resilience.DefaultRetryConfig()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = def.MaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = def.InitialBackoff
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = def.MaxBackoff
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = def.BackoffFactor
	}
	if c.Retry.Jitter == 0 {
		c.Retry.Jitter = def.Jitter
	}
	if c.Audio.SampleRate != c.Diarization.SampleRate {
		c.Audio.SampleRate = c.Diarization.SampleRate
	}
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return validation.Validate(c)
}

// loadConfig reads the file and VOXKIT_* environment, then applies the
// WHISPER_BACKEND and WHISPER_MODEL variables the sidecar images also read.
func loadConfig(opts *rootOptions) (*AppConfig, error) {
	cfg := &AppConfig{}
	var lo []config.LoaderOption
	if opts.configFile != "" {
		lo = append(lo, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		lo = append(lo, config.WithEnvFile(opts.envFile))
	}
	if err := config.LoadConfig(version.Name, cfg, lo...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyWhisperEnv(cfg, os.Getenv)
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func applyWhisperEnv(cfg *AppConfig, getenv func(string) string) {
	if v := util.SanitizeEnvValue(getenv("WHISPER_BACKEND")); v != "" {
		cfg.Whisper.Backend = v
	}
	if v := util.SanitizeEnvValue(getenv("WHISPER_MODEL")); v != "" {
		cfg.Whisper.Model = v
	}
}

// whisperSettings is cfg as a provider factory config map.
func whisperSettings(cfg whisper.Config) map[string]any {
	return map[string]any{
		"url":      cfg.URL,
		"model":    cfg.Model,
		"language": cfg.Language,
		"device":   cfg.Device,
		"backend":  cfg.Backend,
		"timeout":  cfg.Timeout,
	}
}
