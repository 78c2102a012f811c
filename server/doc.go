// Package server provides the voxkit HTTP server: a Gin engine behind a
// net/http middleware chain, served over HTTP/1.1 and h2c, and registered
// with the bootstrap app as a component.
//
// # Middleware
//
// ApplyMiddleware installs, outermost first (server/middleware):
//
//   - Recovery: Panic recovery with structured logging
//   - RequestID: Request ID generation and propagation
//   - Tracing: One server span per request
//   - CORS: Cross-origin resource sharing configuration
//   - BodySizeLimit: Upload size limits
//   - RequestLogger: Request/response logging with duration tracking
//
// RateLimit guards POST /transcribe only.
//
// # Endpoints
//
// Endpoints (server/endpoint):
//
//   - POST /transcribe: multipart upload, returns the transcript
//   - /health: Service health with sidecar components
//   - /alive: Liveness probe
//   - /ready: Readiness probe
//   - /version: Build version information
package server
