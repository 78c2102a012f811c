package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoProvider is returned by selectors when no candidate can serve.
var ErrNoProvider = errors.New("no provider available")

// Candidate is an initialized provider under the name it was initialized as.
type Candidate[T Provider] struct {
	Name     string
	Provider T
}

// Selector picks the provider that serves a request. Candidates arrive in
// initialization order.
type Selector[T Provider] interface {
	Select(ctx context.Context, candidates []Candidate[T]) (T, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc[T Provider] func(ctx context.Context, candidates []Candidate[T]) (T, error)

func (f SelectorFunc[T]) Select(ctx context.Context, candidates []Candidate[T]) (T, error) {
	return f(ctx, candidates)
}

// FirstAvailable selects the earliest initialized provider whose
// IsAvailable reports true.
func FirstAvailable[T Provider]() Selector[T] {
	return SelectorFunc[T](func(ctx context.Context, candidates []Candidate[T]) (T, error) {
		for _, c := range candidates {
			if c.Provider.IsAvailable(ctx) {
				return c.Provider, nil
			}
		}
		var zero T
		return zero, ErrNoProvider
	})
}

// Prefer selects the first available provider among names, in the order
// given. Providers not named are never selected.
func Prefer[T Provider](names ...string) Selector[T] {
	return SelectorFunc[T](func(ctx context.Context, candidates []Candidate[T]) (T, error) {
		for _, name := range names {
			for _, c := range candidates {
				if c.Name == name && c.Provider.IsAvailable(ctx) {
					return c.Provider, nil
				}
			}
		}
		var zero T
		return zero, fmt.Errorf("%w among %v", ErrNoProvider, names)
	})
}
