// Package component defines lifecycle-managed parts of a voxkit process:
// the model sidecars, transcript storage and the HTTP server.
//
// Components are started in registration order by the bootstrap package,
// stopped in reverse order and polled for health by the /health endpoint.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: startup summary descriptions
//   - RouteProvider: HTTP routes for the startup summary
//
// ProviderComponent adapts a sidecar provider to Component.
package component
