package monitor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/probeops/healthlog"
	"github.com/jonwraymond/probeops/observe"
	"github.com/jonwraymond/probeops/probe"
	"github.com/jonwraymond/probeops/registry"
)

// TokenSource supplies a bearer credential for a cycle. *token.Manager and
// token.Static both satisfy it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Prober issues a single probe request. *probe.Executor satisfies it.
type Prober interface {
	Do(ctx context.Context, method, url, bearer string) probe.Outcome
}

// Config configures the cycle runner.
type Config struct {
	// Registry is the endpoint definition store. Required.
	Registry registry.Registry

	// Store is the health log sink. Required.
	Store healthlog.Store

	// Tokens supplies bearer credentials for RunCycle and RunSingle.
	// Callers that bring their own credential use CycleWithToken or
	// SingleWithToken instead.
	Tokens TokenSource

	// Executor issues the probe requests. If nil, a default executor is
	// used.
	Executor Prober

	// BaseURL is the API base, with an optional {proj_key} placeholder.
	BaseURL string

	// ProjectKey identifies the monitored project.
	ProjectKey string

	// Concurrency bounds the number of endpoints probed in parallel.
	// Values below 2 keep the sequential baseline.
	Concurrency int

	// Logger receives operational logs. If nil, logging is disabled.
	Logger observe.Logger

	// Metrics receives probe and cycle measurements. If nil, metrics are
	// disabled.
	Metrics observe.Metrics

	// Tracer traces cycles and probes. If nil, tracing is disabled.
	Tracer trace.Tracer

	// Now is the clock used for log timestamps. Default: time.Now
	Now func() time.Time
}

// Runner drives probe cycles.
type Runner struct {
	config Config
}

// NewRunner creates a cycle runner.
func NewRunner(config Config) *Runner {
	if config.Executor == nil {
		config.Executor = probe.NewExecutor()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}
	if config.Tracer == nil {
		config.Tracer = tracenoop.NewTracerProvider().Tracer("")
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Runner{config: config}
}

// RunCycle acquires a token and probes every registered endpoint once.
// A failed token acquisition aborts the cycle before any probe runs and
// is reported as ErrTokenUnavailable.
func (r *Runner) RunCycle(ctx context.Context, params probe.Params) (*CycleReport, error) {
	bearer, err := r.acquireToken(ctx)
	if err != nil {
		return nil, err
	}
	return r.CycleWithToken(ctx, bearer, params)
}

// CycleWithToken probes every registered endpoint once using the supplied
// bearer credential. Per-endpoint failures are folded into the report;
// only registry access failures abort the cycle.
func (r *Runner) CycleWithToken(ctx context.Context, bearer string, params probe.Params) (*CycleReport, error) {
	ctx, span := r.config.Tracer.Start(ctx, "monitor.cycle")
	defer span.End()

	start := time.Now()

	endpoints, err := r.config.Registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("monitor: listing endpoints: %w", err)
	}

	details := make([]EndpointDetail, len(endpoints))
	if r.config.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.config.Concurrency)
		for i, ep := range endpoints {
			g.Go(func() error {
				details[i] = r.probeOne(gctx, bearer, ep, params)
				return nil
			})
		}
		// probeOne never returns an error; Wait is a collection barrier
		_ = g.Wait()
	} else {
		for i, ep := range endpoints {
			details[i] = r.probeOne(ctx, bearer, ep, params)
		}
	}

	report := &CycleReport{
		Summary: summarize(details),
		Details: details,
	}

	elapsed := time.Since(start)
	r.config.Metrics.RecordCycle(ctx, report.Summary.TotalAPIs, report.Summary.HealthyAPIs, report.Summary.FailedAPIs, elapsed)
	r.config.Logger.Info(ctx, "probe cycle complete",
		observe.Field{Key: "total_apis", Value: report.Summary.TotalAPIs},
		observe.Field{Key: "healthy_apis", Value: report.Summary.HealthyAPIs},
		observe.Field{Key: "failed_apis", Value: report.Summary.FailedAPIs},
		observe.Field{Key: "duration_ms", Value: elapsed.Milliseconds()},
	)

	span.SetAttributes(
		attribute.Int("cycle.total", report.Summary.TotalAPIs),
		attribute.Int("cycle.failed", report.Summary.FailedAPIs),
	)
	return report, nil
}

// RunSingle acquires a token and probes one endpoint by key. Returns
// registry.ErrNotFound for unknown keys.
func (r *Runner) RunSingle(ctx context.Context, key string, params probe.Params) (*EndpointDetail, error) {
	bearer, err := r.acquireToken(ctx)
	if err != nil {
		return nil, err
	}
	return r.SingleWithToken(ctx, key, bearer, params)
}

// SingleWithToken probes one endpoint by key using the supplied bearer
// credential.
func (r *Runner) SingleWithToken(ctx context.Context, key, bearer string, params probe.Params) (*EndpointDetail, error) {
	endpoint, err := r.config.Registry.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	detail := r.probeOne(ctx, bearer, *endpoint, params)
	return &detail, nil
}

func (r *Runner) acquireToken(ctx context.Context) (string, error) {
	if r.config.Tokens == nil {
		return "", ErrTokenUnavailable
	}

	bearer, err := r.config.Tokens.Token(ctx)
	if err != nil {
		r.config.Logger.Error(ctx, "token acquisition failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return "", fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	return bearer, nil
}

// probeOne executes a single probe and assembles its detail record. It has
// no error return: every failure mode is carried in the detail.
func (r *Runner) probeOne(ctx context.Context, bearer string, ep registry.Endpoint, params probe.Params) EndpointDetail {
	ctx, span := r.config.Tracer.Start(ctx, "monitor.probe",
		trace.WithAttributes(attribute.String("endpoint.key", ep.Key)))
	defer span.End()

	logger := r.config.Logger.WithEndpoint(r.config.ProjectKey, ep.Key)

	url := probe.ResolveURL(r.config.BaseURL, r.config.ProjectKey, ep.URLTemplate, params)
	now := r.config.Now()

	outcome := r.config.Executor.Do(ctx, ep.Method, url, bearer)

	entry := healthlog.Entry{
		ProjectKey:     r.config.ProjectKey,
		EndpointKey:    ep.Key,
		LogTime:        now,
		URL:            url,
		Method:         ep.Method,
		Status:         string(outcome.Status),
		ResponseTimeMS: outcome.ResponseTimeMS,
		StatusCode:     outcome.StatusCode,
		ErrorMessage:   outcome.ErrorMessage,
		ResponseBody:   outcome.Body,
	}
	if err := r.config.Store.Append(ctx, entry); err != nil {
		// the probe already happened; losing the log entry degrades
		// history but not the returned detail
		logger.Error(ctx, "health log append failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
	}

	recent, err := r.config.Store.Recent(ctx, r.config.ProjectKey, ep.Key, RecentWindow)
	if err != nil {
		logger.Warn(ctx, "recent history read failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	window, err := r.config.Store.Recent(ctx, r.config.ProjectKey, ep.Key, UptimeWindow)
	if err != nil {
		logger.Warn(ctx, "uptime window read failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
	}

	logs := make([]LogSnapshot, 0, len(recent))
	for _, e := range recent {
		logs = append(logs, snapshot(e))
	}

	healthy := outcome.Status.Healthy()
	duration := time.Duration(0)
	if outcome.ResponseTimeMS > 0 {
		duration = time.Duration(outcome.ResponseTimeMS) * time.Millisecond
	}
	r.config.Metrics.RecordProbe(ctx, ep.Key, string(outcome.Status), healthy, duration)

	if !healthy {
		logger.Warn(ctx, "probe unhealthy",
			observe.Field{Key: "status", Value: string(outcome.Status)},
			observe.Field{Key: "status_code", Value: outcome.StatusCode},
			observe.Field{Key: "error", Value: outcome.ErrorMessage},
		)
	} else {
		logger.Debug(ctx, "probe complete",
			observe.Field{Key: "status", Value: string(outcome.Status)},
			observe.Field{Key: "response_time_ms", Value: outcome.ResponseTimeMS},
		)
	}

	return EndpointDetail{
		Key:            ep.Key,
		Name:           ep.Name,
		URL:            url,
		Status:         string(outcome.Status),
		ResponseTimeMS: outcome.ResponseTimeMS,
		Uptime:         Uptime(window),
		LastCheck:      now,
		StatusCode:     outcome.StatusCode,
		Last5Logs:      logs,
		Sport:          ep.Sport,
		Category:       ep.Category,
		ResponseBody:   outcome.Body,
	}
}
