package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/kbukum/voxkit/logger"
)

// Manager owns the initialized providers of one capability and picks one
// per request through its Selector.
type Manager[T Provider] struct {
	registry *Registry[T]
	selector Selector[T]
	log      *logger.Logger

	mu          sync.RWMutex
	initialized []Candidate[T]
}

// NewManager creates a Manager. A nil selector means FirstAvailable.
func NewManager[T Provider](registry *Registry[T], selector Selector[T]) *Manager[T] {
	if registry == nil {
		registry = NewRegistry[T]()
	}
	if selector == nil {
		selector = FirstAvailable[T]()
	}
	return &Manager[T]{
		registry: registry,
		selector: selector,
		log:      logger.Get("provider"),
	}
}

// Register adds a factory to the underlying registry.
func (m *Manager[T]) Register(name string, factory Factory[T]) {
	m.registry.Register(name, factory)
	m.log.Debug("factory registered", logger.Fields(logger.FieldProvider, name))
}

// Initialize builds the named provider, runs Init when it is Initializable
// and keeps it for selection. A provider already initialized under name is
// returned as is.
func (m *Manager[T]) Initialize(ctx context.Context, name string, cfg map[string]any) (T, error) {
	if p, ok := m.Lookup(name); ok {
		return p, nil
	}
	var zero T
	instance, err := m.registry.New(name, cfg)
	if err != nil {
		return zero, fmt.Errorf("initialize provider %q: %w", name, err)
	}
	if init, ok := any(instance).(Initializable); ok {
		if err := init.Init(ctx); err != nil {
			return zero, fmt.Errorf("initialize provider %q: %w", name, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.initialized {
		if c.Name == name {
			// Lost a race with a concurrent Initialize.
			_ = closeProvider(ctx, instance)
			return c.Provider, nil
		}
	}
	m.initialized = append(m.initialized, Candidate[T]{Name: name, Provider: instance})
	m.log.Info("provider initialized", logger.Fields(logger.FieldProvider, name))
	return instance, nil
}

// Lookup returns the provider initialized under name.
func (m *Manager[T]) Lookup(name string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.initialized {
		if c.Name == name {
			return c.Provider, true
		}
	}
	var zero T
	return zero, false
}

// Get returns the provider chosen by the selector.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	m.mu.RLock()
	candidates := append([]Candidate[T](nil), m.initialized...)
	m.mu.RUnlock()
	return m.selector.Select(ctx, candidates)
}

// Names returns the initialized provider names in initialization order.
func (m *Manager[T]) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.initialized))
	for i, c := range m.initialized {
		names[i] = c.Name
	}
	return names
}

// Shutdown closes Closeable providers in reverse initialization order and
// forgets all of them.
func (m *Manager[T]) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	initialized := m.initialized
	m.initialized = nil
	m.mu.Unlock()

	var errs []error
	for i := len(initialized) - 1; i >= 0; i-- {
		if err := closeProvider(ctx, initialized[i].Provider); err != nil {
			errs = append(errs, fmt.Errorf("close provider %q: %w", initialized[i].Name, err))
		}
	}
	return stderrors.Join(errs...)
}

func closeProvider(ctx context.Context, p any) error {
	if c, ok := p.(Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}
