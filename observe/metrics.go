package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records probing metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordProbe records one probe with its classified status and duration.
	RecordProbe(ctx context.Context, endpointKey, status string, healthy bool, duration time.Duration)

	// RecordCycle records one completed cycle.
	RecordCycle(ctx context.Context, total, healthy, failed int, duration time.Duration)

	// RecordTokenRefresh records one token fetch attempt.
	RecordTokenRefresh(ctx context.Context, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	probeCount    metric.Int64Counter
	probeFailures metric.Int64Counter
	probeDuration metric.Float64Histogram
	cycleCount    metric.Int64Counter
	cycleDuration metric.Float64Histogram
	tokenRefresh  metric.Int64Counter
}

// NewMetrics creates a Metrics instance on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	probeCount, err := meter.Int64Counter(
		"probe.total",
		metric.WithDescription("Total number of probes issued"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	probeFailures, err := meter.Int64Counter(
		"probe.failures",
		metric.WithDescription("Total number of probes classified as failed"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	probeDuration, err := meter.Float64Histogram(
		"probe.duration_ms",
		metric.WithDescription("Probe round-trip time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cycleCount, err := meter.Int64Counter(
		"cycle.total",
		metric.WithDescription("Total number of completed probe cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"cycle.duration_ms",
		metric.WithDescription("Full cycle duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	tokenRefresh, err := meter.Int64Counter(
		"token.refresh.total",
		metric.WithDescription("Total number of auth token fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		probeCount:    probeCount,
		probeFailures: probeFailures,
		probeDuration: probeDuration,
		cycleCount:    cycleCount,
		cycleDuration: cycleDuration,
		tokenRefresh:  tokenRefresh,
	}, nil
}

// RecordProbe records one probe.
func (m *metricsImpl) RecordProbe(ctx context.Context, endpointKey, status string, healthy bool, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("endpoint.key", endpointKey),
		attribute.String("probe.status", status),
	)

	m.probeCount.Add(ctx, 1, opt)
	if !healthy {
		m.probeFailures.Add(ctx, 1, opt)
	}
	if duration >= 0 {
		m.probeDuration.Record(ctx, float64(duration.Milliseconds()), opt)
	}
}

// RecordCycle records one completed cycle.
func (m *metricsImpl) RecordCycle(ctx context.Context, total, healthy, failed int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.Int("cycle.endpoints", total),
		attribute.Int("cycle.healthy", healthy),
		attribute.Int("cycle.failed", failed),
	)
	m.cycleCount.Add(ctx, 1, opt)
	m.cycleDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordTokenRefresh records one token fetch attempt.
func (m *metricsImpl) RecordTokenRefresh(ctx context.Context, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.tokenRefresh.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordProbe(context.Context, string, string, bool, time.Duration) {}
func (noopMetrics) RecordCycle(context.Context, int, int, int, time.Duration)        {}
func (noopMetrics) RecordTokenRefresh(context.Context, error)                        {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }
