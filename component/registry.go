package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
)

// DefaultStopTimeout bounds the Stop call of a single component.
const DefaultStopTimeout = 10 * time.Second

type entry struct {
	Component
	started bool
}

// Registry starts components in registration order and stops the started
// ones in reverse, so register dependencies (model sidecars) before their
// users (the HTTP server).
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	log     *logger.Logger
}

func NewRegistry() *Registry {
	return &Registry{log: logger.Get("component")}
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(c.Name()) != nil {
		return fmt.Errorf("component %s already registered", c.Name())
	}
	r.entries = append(r.entries, &entry{Component: c})
	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, c.Name()))
	return nil
}

// StartAll starts every component that is not running yet and stops at the
// first failure. Components started before the failure stay running until
// StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("starting components", logger.Fields("count", len(r.entries)))
	for _, e := range r.entries {
		if e.started {
			continue
		}
		began := time.Now()
		if err := e.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields(
				logger.FieldComponent, e.Name(),
				logger.FieldError, err.Error(),
			))
			return fmt.Errorf("failed to start %s: %w", e.Name(), err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields(
			logger.FieldComponent, e.Name(),
			logger.FieldDuration, time.Since(began).Milliseconds(),
		))
	}
	return nil
}

// StopAll stops the started components in reverse order, giving each
// DefaultStopTimeout. Every component is attempted; the errors are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		if err := r.stop(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", e.Name(), err))
		}
		e.started = false
	}
	return errors.Join(errs...)
}

func (r *Registry) stop(ctx context.Context, e *entry) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
	defer cancel()
	err := e.Stop(ctx)
	if err != nil {
		r.log.Error("component stop failed", logger.Fields(
			logger.FieldComponent, e.Name(),
			logger.FieldError, err.Error(),
		))
	} else {
		r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, e.Name()))
	}
	return err
}

// HealthAll reports every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []observability.Health {
	all := r.All()
	out := make([]observability.Health, len(all))
	for i, c := range all {
		out[i] = c.Health(ctx)
	}
	return out
}

// Checkers exposes every component to observability.Check.
func (r *Registry) Checkers() []observability.HealthChecker {
	all := r.All()
	out := make([]observability.HealthChecker, len(all))
	for i, c := range all {
		out[i] = checker{c}
	}
	return out
}

type checker struct{ Component }

func (c checker) CheckHealth(ctx context.Context) observability.Health { return c.Health(ctx) }

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e := r.find(name); e != nil {
		return e.Component
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Component
	}
	return out
}

func (r *Registry) find(name string) *entry {
	for _, e := range r.entries {
		if e.Name() == name {
			return e
		}
	}
	return nil
}
