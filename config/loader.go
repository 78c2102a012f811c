package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix marks environment variables that override file configuration,
// e.g. VOXKIT_DIARIZATION_DISTANCE_THRESHOLD=0.4.
const EnvPrefix = "VOXKIT_"

// loader carries the file overrides and filesystem hooks of one LoadConfig
// call.
type loader struct {
	configFile string
	envFile    string
	exists     func(path string) bool
	loadEnv    func(path string) error
}

// LoaderOption customizes LoadConfig.
type LoaderOption func(*loader)

// WithConfigFile skips the search and reads path, which must exist.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile skips the search and loads path if it exists.
func WithEnvFile(path string) LoaderOption {
	return func(l *loader) { l.envFile = path }
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// searchPaths lists where config and .env files for service are looked for,
// most specific first.
func searchPaths(service string) (configs, envs []string) {
	configs = []string{
		"./cmd/" + service + "/config.yml",
		"./config/" + service + ".yml",
		"./config/config.yml",
		"./config.yml",
	}
	envs = []string{
		"./cmd/" + service + "/.env",
		"./.env." + service,
		"./.env",
	}
	return configs, envs
}

// resolve fills in whichever of the two files was not given explicitly.
func (l *loader) resolve(service string) {
	configs, envs := searchPaths(service)
	if l.configFile == "" {
		if i := slices.IndexFunc(configs, l.exists); i >= 0 {
			l.configFile = configs[i]
		}
	}
	if l.envFile == "" {
		if i := slices.IndexFunc(envs, l.exists); i >= 0 {
			l.envFile = envs[i]
		}
	}
}

// LoadConfig decodes the configuration of service into cfg. Sources, lowest
// precedence first: the YAML file, the .env file, then VOXKIT_* variables of
// the process environment. A .env file never overrides the environment.
func LoadConfig(service string, cfg any, opts ...LoaderOption) error {
	l := &loader{exists: fileExists, loadEnv: func(p string) error { return godotenv.Load(p) }}
	for _, opt := range opts {
		opt(l)
	}
	l.resolve(service)

	v := viper.New()
	if l.configFile != "" {
		if !l.exists(l.configFile) {
			return fmt.Errorf("config file %s not found", l.configFile)
		}
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", l.configFile, err)
		}
	}
	if l.envFile != "" && l.exists(l.envFile) {
		if err := l.loadEnv(l.envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", l.envFile, err)
		}
	}
	bindPrefixedEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode %s config: %w", service, err)
	}
	return nil
}

// bindPrefixedEnv sets each VOXKIT_* value under every config key it may
// name. Keys that match no field are dropped by Unmarshal.
func bindPrefixedEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok {
			continue
		}
		for _, k := range envKeyVariants(name) {
			v.Set(k, value)
		}
	}
}

// envKeyVariants lists the config keys an underscore separated env name can
// stand for, since "_" is both the nesting separator and part of key names:
//
//	DIARIZATION_MAX_SPEAKERS -> diarization_max_speakers, diarization.max_speakers,
//	                            diarization_max.speakers, diarization.max.speakers
func envKeyVariants(name string) []string {
	parts := strings.Split(strings.ToLower(name), "_")
	out := []string{strings.Join(parts, "_")}
	for split := 1; split < len(parts); split++ {
		out = append(out,
			strings.Join(parts[:split], ".")+"."+strings.Join(parts[split:], "_"),
			strings.Join(parts[:split], "_")+"."+strings.Join(parts[split:], "."),
		)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
