package storage

import (
	"fmt"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
)

// Default configuration values.
const (
	DefaultProvider    = ProviderLocal
	DefaultBasePath    = "transcripts"
	DefaultMaxFileSize = int64(16 * 1024 * 1024)
)

// Config holds storage configuration.
type Config struct {
	// Provider selects the storage backend.
	Provider string `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=local"`

	// BasePath is the root directory for local storage.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	// MaxFileSize is the maximum allowed object size in bytes.
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size" validate:"gte=0"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return fmt.Errorf("storage: base_path is required for local provider")
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
