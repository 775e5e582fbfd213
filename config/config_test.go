package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probeops.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
project:
  key: RS_P_1234
  api_key: RS5_xyz
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Project.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.Project.BaseURL)
	}
	if cfg.Project.AuthURL != DefaultAuthURL {
		t.Errorf("AuthURL = %q, want default", cfg.Project.AuthURL)
	}
	if cfg.Probe.Timeout != 10*time.Second {
		t.Errorf("Probe.Timeout = %v, want 10s", cfg.Probe.Timeout)
	}
	if cfg.Probe.SlowThresholdMS != 1000 {
		t.Errorf("SlowThresholdMS = %d, want 1000", cfg.Probe.SlowThresholdMS)
	}
	if cfg.Schedule.Interval != 30*time.Minute {
		t.Errorf("Interval = %v, want 30m", cfg.Schedule.Interval)
	}
	if cfg.Schedule.Eager == nil || !*cfg.Schedule.Eager {
		t.Error("Eager default should be true")
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Telemetry.MetricsExporter != "prometheus" {
		t.Errorf("MetricsExporter = %q, want prometheus", cfg.Telemetry.MetricsExporter)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
project:
  key: RS_P_1234
  api_key: RS5_xyz
  token_margin: 2m
probe:
  timeout: 5s
  slow_threshold_ms: 800
  concurrency: 4
schedule:
  interval: 10m
  eager: false
server:
  listen_address: ":9090"
storage:
  driver: memory
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Project.TokenMargin != 2*time.Minute {
		t.Errorf("TokenMargin = %v, want 2m", cfg.Project.TokenMargin)
	}
	if cfg.Probe.Timeout != 5*time.Second {
		t.Errorf("Probe.Timeout = %v, want 5s", cfg.Probe.Timeout)
	}
	if cfg.Probe.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Probe.Concurrency)
	}
	if *cfg.Schedule.Eager {
		t.Error("Eager = true, want false from file")
	}
	if cfg.Server.ListenAddress != ":9090" {
		t.Errorf("ListenAddress = %q, want :9090", cfg.Server.ListenAddress)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
project:
  key: RS_P_file
  api_key: RS5_file
schedule:
  interval: 10m
`)

	t.Setenv("PROBEOPS_PROJECT_KEY", "RS_P_env")
	t.Setenv("PROBEOPS_INTERVAL", "45m")
	t.Setenv("PROBEOPS_PROBE_CONCURRENCY", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Project.Key != "RS_P_env" {
		t.Errorf("Project.Key = %q, want env override RS_P_env", cfg.Project.Key)
	}
	if cfg.Schedule.Interval != 45*time.Minute {
		t.Errorf("Interval = %v, want env override 45m", cfg.Schedule.Interval)
	}
	if cfg.Probe.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want env override 8", cfg.Probe.Concurrency)
	}
	if cfg.Project.APIKey != "RS5_file" {
		t.Errorf("APIKey = %q, file value should survive without override", cfg.Project.APIKey)
	}
}

func TestLoadExpandsAPIKeyReference(t *testing.T) {
	path := writeConfig(t, `
project:
  key: RS_P_1234
  api_key: ${CONFIG_TEST_API_KEY}
`)
	t.Setenv("CONFIG_TEST_API_KEY", "RS5_resolved")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Project.APIKey != "RS5_resolved" {
		t.Errorf("APIKey = %q, want resolved env reference", cfg.Project.APIKey)
	}
}

func TestLoadAPIKeyReferenceMissing(t *testing.T) {
	path := writeConfig(t, `
project:
  key: RS_P_1234
  api_key: ${CONFIG_TEST_UNSET_KEY}
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for unresolvable api key reference")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() with missing explicit path expected error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing project key",
			mutate:  func(c *Config) { c.Project.Key = "" },
			wantErr: "project key",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Project.APIKey = "" },
			wantErr: "api key",
		},
		{
			name:    "bad storage driver",
			mutate:  func(c *Config) { c.Storage.Driver = "postgres" },
			wantErr: "storage driver",
		},
		{
			name:    "bad concurrency",
			mutate:  func(c *Config) { c.Probe.Concurrency = -1 },
			wantErr: "concurrency",
		},
		{
			name:    "interval too small",
			mutate:  func(c *Config) { c.Schedule.Interval = 100 * time.Millisecond },
			wantErr: "interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			cfg.Project.Key = "RS_P_1234"
			cfg.Project.APIKey = "RS5_xyz"
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
