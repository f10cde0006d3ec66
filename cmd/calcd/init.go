package main

import (
	"context"

	"calculator-widget/internal/calculator"
	"calculator-widget/internal/config"
	"calculator-widget/internal/observability"
)

// initTelemetry starts the OTLP pipelines selected by cfg and registers the
// calculator metric instruments. Instruments are registered even with
// telemetry off so handlers record into the no-op provider.
func initTelemetry(ctx context.Context, cfg config.Config) (observability.ShutdownFunc, error) {
	shutdown, err := observability.InitTelemetry(ctx, observability.TelemetryOptions{
		Tracing: cfg.Telemetry,
		Metrics: cfg.Telemetry,
		Logs:    cfg.OTLPLogs,
	})
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}
