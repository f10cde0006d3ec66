package observability

import (
	"context"
	"errors"
	"fmt"
)

// ShutdownFunc flushes and stops a telemetry provider.
type ShutdownFunc func(context.Context) error

// TelemetryOptions selects which OTLP pipelines InitTelemetry starts.
type TelemetryOptions struct {
	Tracing bool
	Metrics bool
	Logs    bool
}

// InitTelemetry starts the selected OTLP pipelines. The returned function
// shuts them down in reverse order; it is never nil.
func InitTelemetry(ctx context.Context, opts TelemetryOptions) (ShutdownFunc, error) {
	var shutdowns []ShutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	steps := []struct {
		name    string
		enabled bool
		init    func(context.Context) (func(context.Context) error, error)
	}{
		{"tracing", opts.Tracing, InitTracing},
		{"metrics", opts.Metrics, InitMetrics},
		{"logging", opts.Logs, InitLogging},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}
		fn, err := step.init(ctx)
		if err != nil {
			_ = shutdown(ctx)
			return func(context.Context) error { return nil }, fmt.Errorf("init %s: %w", step.name, err)
		}
		shutdowns = append(shutdowns, fn)
	}

	return shutdown, nil
}
