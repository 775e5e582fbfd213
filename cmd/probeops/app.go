package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonwraymond/probeops/config"
	"github.com/jonwraymond/probeops/healthlog"
	"github.com/jonwraymond/probeops/monitor"
	"github.com/jonwraymond/probeops/observe"
	"github.com/jonwraymond/probeops/probe"
	"github.com/jonwraymond/probeops/registry"
	"github.com/jonwraymond/probeops/token"
	_ "modernc.org/sqlite"
)

// app holds the wired components shared by the serve and check commands.
type app struct {
	cfg      *config.Config
	observer observe.Observer
	metrics  observe.Metrics
	registry registry.Registry
	store    healthlog.Store
	manager  *token.Manager
	runner   *monitor.Runner

	db *sql.DB
}

func buildApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	observer, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "probeops",
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.Telemetry.TracingEnabled,
			Exporter:  cfg.Telemetry.TracingExporter,
			SamplePct: cfg.Telemetry.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.Telemetry.MetricsEnabled,
			Exporter: cfg.Telemetry.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.Telemetry.LogLevel,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("setting up telemetry: %w", err)
	}

	metrics := observe.NopMetrics()
	if cfg.Telemetry.MetricsEnabled {
		metrics, err = observe.NewMetrics(observer.Meter())
		if err != nil {
			return nil, fmt.Errorf("creating metrics: %w", err)
		}
	}

	a := &app{cfg: cfg, observer: observer, metrics: metrics}

	switch cfg.Storage.Driver {
	case "memory":
		a.registry = registry.NewMemoryRegistry()
		a.store = healthlog.NewMemoryStore()
	default:
		db, err := sql.Open("sqlite", cfg.Storage.Path+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		reg, err := registry.NewSQLiteRegistryFromDB(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("preparing endpoint registry: %w", err)
		}
		store, err := healthlog.NewSQLiteStoreFromDB(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("preparing health log: %w", err)
		}
		a.db = db
		a.registry = reg
		a.store = store
	}

	client := token.NewClient(token.ClientConfig{
		AuthURL: cfg.Project.AuthURL,
		APIKey:  cfg.Project.APIKey,
		Timeout: cfg.Probe.Timeout,
	})
	a.manager = token.NewManager(client, token.ManagerConfig{
		ProjectKey: cfg.Project.Key,
		Margin:     cfg.Project.TokenMargin,
		Metrics:    metrics,
	})

	a.runner = monitor.NewRunner(monitor.Config{
		Registry: a.registry,
		Store:    a.store,
		Tokens:   a.manager,
		Executor: probe.NewExecutor(probe.ExecutorConfig{
			Timeout:         cfg.Probe.Timeout,
			SlowThresholdMS: cfg.Probe.SlowThresholdMS,
		}),
		BaseURL:     cfg.Project.BaseURL,
		ProjectKey:  cfg.Project.Key,
		Concurrency: cfg.Probe.Concurrency,
		Logger:      observer.Logger(),
		Metrics:     metrics,
		Tracer:      observer.Tracer(),
	})

	return a, nil
}

// shutdown releases app resources, bounded by ctx.
func (a *app) shutdown(ctx context.Context) error {
	var first error
	if err := a.observer.Shutdown(ctx); err != nil {
		first = err
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
