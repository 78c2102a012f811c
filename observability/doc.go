// Package observability wires OpenTelemetry tracing and metrics for voxkit.
//
// Exporters are installed only when observability.enabled is set in
// configuration; otherwise spans started with StartSpan go to the global
// no-op provider.
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Resource{ServiceName: "voxkit"})
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscript)
//	defer span.End()
//
// Sidecar providers implement HealthChecker; Check aggregates them for the
// server's /health endpoint.
package observability
