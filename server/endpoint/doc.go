// Package endpoint provides the Gin handlers served by voxkit: POST
// /transcribe for uploads, /health with component details, the /alive and
// /ready probes and /version.
package endpoint
