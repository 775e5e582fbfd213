package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/probeops/health"
	"github.com/jonwraymond/probeops/observe"
	"github.com/jonwraymond/probeops/probe"
	"github.com/jonwraymond/probeops/schedule"
	"github.com/jonwraymond/probeops/server"
	"github.com/jonwraymond/probeops/token"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the probe scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runServe(cmd.Context(), configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	logger := a.observer.Logger()

	sched, err := schedule.New(func(ctx context.Context) {
		if _, err := a.runner.RunCycle(ctx, probe.Params{}); err != nil {
			logger.Error(ctx, "scheduled cycle failed",
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}, schedule.Config{
		Interval: a.cfg.Schedule.Interval,
		Spec:     a.cfg.Schedule.Spec,
		Eager:    *a.cfg.Schedule.Eager,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	var metricsHandler http.Handler
	if a.cfg.Telemetry.MetricsEnabled && a.cfg.Telemetry.MetricsExporter == "prometheus" {
		metricsHandler = promhttp.Handler()
	}

	checker := health.NewChecker(5 * time.Second)
	checker.Register("token_cache", health.TokenCache(a.manager))
	if a.db != nil {
		checker.Register("database", health.Database(a.db))
	}

	srv := server.New(server.Config{
		Runner:   a.runner,
		Registry: a.registry,
		Login: func(ctx context.Context, projectKey, apiKey string) (*token.AuthContext, error) {
			client := token.NewClient(token.ClientConfig{
				AuthURL: a.cfg.Project.AuthURL,
				APIKey:  apiKey,
				Timeout: a.cfg.Probe.Timeout,
			})
			return client.Fetch(ctx, projectKey)
		},
		Metrics: metricsHandler,
		Health:  health.Handler(checker),
		Logger:  logger,
	})

	httpServer := &http.Server{
		Addr:         a.cfg.Server.ListenAddress,
		Handler:      srv.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	if err := sched.Start(); err != nil {
		return err
	}
	logger.Info(ctx, "probeops started",
		observe.Field{Key: "listen_address", Value: a.cfg.Server.ListenAddress},
		observe.Field{Key: "interval", Value: a.cfg.Schedule.Interval.String()},
		observe.Field{Key: "project_key", Value: a.cfg.Project.Key},
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var first error
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		first = err
	}
	if err := sched.Stop(shutdownCtx); err != nil && first == nil {
		first = err
	}
	if err := a.shutdown(shutdownCtx); err != nil && first == nil {
		first = err
	}
	return first
}
