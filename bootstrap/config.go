package bootstrap

import (
	"github.com/kbukum/voxkit/config"
)

// Config is the constraint for application configuration types. A pointer
// to a struct embedding config.ServiceConfig satisfies it through promoted
// methods:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Whisper whisper.Config `yaml:"whisper" mapstructure:"whisper"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
