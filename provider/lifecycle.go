package provider

import "context"

// Initializable is optionally implemented by providers that must verify or
// warm a backend before serving (e.g., probe a model sidecar).
// Manager.Initialize calls Init automatically.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable is optionally implemented by providers that hold resources.
// Manager.Shutdown calls Close automatically.
type Closeable interface {
	Close(ctx context.Context) error
}
