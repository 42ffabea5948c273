// Package observability provides OpenTelemetry tracing and metrics for
// restorm queries.
//
// Setup installs OTLP exporters from configuration:
//
//	metrics, shutdown, err := observability.Setup(ctx, "people-cli", "1.0.0", "dev", cfg.Telemetry)
//	defer shutdown(ctx)
//	orm.SetMetrics(metrics)
//
// Each queryset execution runs as an Operation:
//
//	op := observability.NewOperation("Person", "list", "/people", requestID, metrics)
//	ctx, span := op.Start(ctx, observability.SpanQuery)
//	defer op.End(ctx, span, len(items), code, err)
//
// Health checks:
//
//	health := observability.Check(ctx, "people-cli", "1.0.0",
//		observability.HealthCheckFunc{Name: "api", Probe: ping})
package observability
