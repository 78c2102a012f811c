package transcription

import "github.com/kbukum/voxkit/provider"

// ManagerOption configures the transcription provider manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	selector provider.Selector[Provider]
	registry *provider.Registry[Provider]
}

// WithSelector sets the provider selection strategy.
func WithSelector(s provider.Selector[Provider]) ManagerOption {
	return func(c *managerConfig) { c.selector = s }
}

// WithRegistry makes the manager share an existing factory registry.
func WithRegistry(r *provider.Registry[Provider]) ManagerOption {
	return func(c *managerConfig) { c.registry = r }
}

// NewManager creates a provider manager for speech recognition backends.
func NewManager(opts ...ManagerOption) *provider.Manager[Provider] {
	cfg := &managerConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return provider.NewManager(cfg.registry, cfg.selector)
}
