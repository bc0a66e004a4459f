// Package observability provides OpenTelemetry tracing and metrics
// integration for the daemon.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("notewired"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "pipeline.process")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("notewired"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("notewired"))
//	metrics.RecordOperation(ctx, "notewired", "pipeline.process", "processed", duration)
package observability
