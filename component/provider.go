package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/provider"
)

// ProviderComponent runs a sidecar provider as a Component. Start runs the
// provider's Init at most once successfully. An optional component logs a
// failed Init and starts degraded instead of aborting startup.
type ProviderComponent struct {
	name     string
	p        provider.Provider
	desc     Description
	optional bool
	log      *logger.Logger

	mu          sync.RWMutex
	initialized bool
	lastError   error
}

// ProviderOption configures a ProviderComponent.
type ProviderOption func(*ProviderComponent)

// Optional lets the process start while the provider's backend is down.
func Optional() ProviderOption {
	return func(c *ProviderComponent) { c.optional = true }
}

// WithDescription sets the startup summary entry.
func WithDescription(d Description) ProviderOption {
	return func(c *ProviderComponent) { c.desc = d }
}

// NewProviderComponent wraps p under the given component name.
func NewProviderComponent(name string, p provider.Provider, opts ...ProviderOption) *ProviderComponent {
	c := &ProviderComponent{
		name: name,
		p:    p,
		desc: Description{Name: p.Name(), Type: name},
		log:  logger.Get("component").WithComponent(name),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name returns the component name.
func (c *ProviderComponent) Name() string { return c.name }

// Provider returns the wrapped provider.
func (c *ProviderComponent) Provider() provider.Provider { return c.p }

// Describe returns the startup summary entry.
func (c *ProviderComponent) Describe() Description { return c.desc }

// Start initializes the provider.
func (c *ProviderComponent) Start(ctx context.Context) error {
	err := c.Initialize(ctx)
	if err != nil && c.optional {
		c.log.Warn("optional provider unavailable, starting degraded", logger.Fields(
			logger.FieldProvider, c.p.Name(),
			logger.FieldError, err.Error(),
		))
		return nil
	}
	return err
}

// Initialize runs the provider's Init unless it already succeeded. A failed
// attempt is retried on the next call.
func (c *ProviderComponent) Initialize(ctx context.Context) error {
	c.mu.RLock()
	if c.initialized {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}

	if init, ok := c.p.(provider.Initializable); ok {
		if err := init.Init(ctx); err != nil {
			c.lastError = err
			return fmt.Errorf("failed to initialize %s: %w", c.name, err)
		}
	}
	c.initialized = true
	c.lastError = nil
	c.log.Debug("provider initialized", logger.Fields(logger.FieldProvider, c.p.Name()))
	return nil
}

// IsInitialized reports whether Init has succeeded.
func (c *ProviderComponent) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Stop closes the provider and marks it uninitialized.
func (c *ProviderComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if closer, ok := c.p.(provider.Closeable); ok && c.initialized {
		err = closer.Close(ctx)
	}
	c.initialized = false
	return err
}

// Health reports the provider's own health check when it has one, its
// availability otherwise. A provider that never initialized is at best
// degraded.
func (c *ProviderComponent) Health(ctx context.Context) observability.Health {
	var h observability.Health
	if hc, ok := c.p.(observability.HealthChecker); ok {
		h = hc.CheckHealth(ctx)
	} else {
		h.Status = observability.HealthStatusUp
		if !c.p.IsAvailable(ctx) {
			h.Status = observability.HealthStatusDown
		}
	}
	h.Name = c.name
	if c.optional && h.Status == observability.HealthStatusDown {
		h.Status = observability.HealthStatusDegraded
	}

	c.mu.RLock()
	initialized, lastErr := c.initialized, c.lastError
	c.mu.RUnlock()
	if !initialized && h.Status == observability.HealthStatusUp {
		h.Status = observability.HealthStatusDegraded
		h.Message = "not initialized"
		if lastErr != nil {
			h.Message = lastErr.Error()
		}
	}
	return h
}
