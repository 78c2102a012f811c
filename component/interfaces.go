package component

import (
	"context"

	"github.com/kbukum/voxkit/observability"
)

// Component represents a lifecycle-managed part of the process.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) observability.Health
}

// Description holds summary information for the startup log.
type Description struct {
	// Name is the human-readable display name, e.g. "Whisper". Defaults to
	// the component's Name().
	Name string
	// Type categorizes the component: "asr", "embedding", "storage", "server".
	Type string
	// Details is a one-liner such as "http://localhost:8387 model=base".
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable is optionally implemented by Components to report what they
// are and how they are configured.
type Describable interface {
	Describe() Description
}

// Route holds a single HTTP route for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is optionally implemented by server components to report
// their registered HTTP routes.
type RouteProvider interface {
	Routes() []Route
}
