package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Diarization   struct {
		DistanceThreshold float64 `mapstructure:"distance_threshold"`
		MaxSpeakers       int     `mapstructure:"max_speakers"`
	} `mapstructure:"diarization"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: voxkit-test
environment: staging
diarization:
  distance_threshold: 0.5
  max_speakers: 3
`)

	var cfg testConfig
	if err := LoadConfig("voxkit", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "voxkit-test" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Diarization.DistanceThreshold != 0.5 || cfg.Diarization.MaxSpeakers != 3 {
		t.Errorf("unexpected diarization config %+v", cfg.Diarization)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "diarization:\n  max_speakers: 3\n")
	t.Setenv("VOXKIT_DIARIZATION_MAX_SPEAKERS", "5")

	var cfg testConfig
	if err := LoadConfig("voxkit", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none.env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Diarization.MaxSpeakers != 5 {
		t.Errorf("expected env override 5, got %d", cfg.Diarization.MaxSpeakers)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "name: voxkit\n")
	envFile := writeFile(t, dir, ".env", "VOXKIT_DIARIZATION_DISTANCE_THRESHOLD=0.42\n")
	t.Cleanup(func() { os.Unsetenv("VOXKIT_DIARIZATION_DISTANCE_THRESHOLD") })

	var cfg testConfig
	if err := LoadConfig("voxkit", &cfg, WithConfigFile(path), WithEnvFile(envFile)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Diarization.DistanceThreshold != 0.42 {
		t.Errorf("expected threshold from .env, got %v", cfg.Diarization.DistanceThreshold)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("voxkit", &cfg, WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestLoaderResolve(t *testing.T) {
	present := map[string]bool{
		"./config/config.yml": true,
		"./config.yml":        true,
		"./.env":              true,
	}
	exists := func(p string) bool { return present[p] }

	l := &loader{exists: exists}
	l.resolve("voxkit")
	if l.configFile != "./config/config.yml" || l.envFile != "./.env" {
		t.Errorf("resolved %q and %q", l.configFile, l.envFile)
	}

	l = &loader{configFile: "custom.yml", exists: exists}
	l.resolve("voxkit")
	if l.configFile != "custom.yml" {
		t.Errorf("explicit path should win, got %q", l.configFile)
	}

	l = &loader{exists: func(string) bool { return false }}
	l.resolve("voxkit")
	if l.configFile != "" || l.envFile != "" {
		t.Errorf("nothing to find, got %q and %q", l.configFile, l.envFile)
	}
}

func TestBindPrefixedEnv(t *testing.T) {
	v := viper.New()
	bindPrefixedEnv(v, []string{"VOXKIT_SERVER_PORT=9000", "PATH=/usr/bin", "BROKEN"})
	if v.GetString("server.port") != "9000" {
		t.Errorf("expected server.port=9000, got %q", v.GetString("server.port"))
	}
	if v.IsSet("path") {
		t.Error("unprefixed variables must be ignored")
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("DIARIZATION_MAX_SPEAKERS")
	want := map[string]bool{
		"diarization_max_speakers": true,
		"diarization.max_speakers": true,
		"diarization.max.speakers": true,
	}
	for _, v := range got {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants %v in %v", want, got)
	}
	if v := envKeyVariants("DEBUG"); len(v) != 1 || v[0] != "debug" {
		t.Errorf("single part key should map to itself, got %v", v)
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := ServiceConfig{}
	cfg.ApplyDefaults()
	if cfg.Name != "voxkit" || cfg.Environment != "development" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Environment = "qa"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid environment to fail")
	}
}
