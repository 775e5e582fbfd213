// Package observe provides telemetry for the probing engine: structured
// logging, OpenTelemetry metrics and tracing behind a single Observer.
//
// # Basic Usage
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "probeops",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer obs.Shutdown(ctx)
//
//	obs.Logger().Info(ctx, "cycle complete",
//	    observe.Field{Key: "healthy", Value: 12})
//
// Log fields carrying credentials (token, api_key, ...) are redacted before
// serialization.
package observe
