// Package config loads daemon configuration from a YAML file, a .env file
// and environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/probeops/secret"
)

const projectConfigName = "probeops.yaml"

// Default endpoints for the Roanuz cricket API.
const (
	DefaultBaseURL = "https://api.sports.roanuz.com/v5/cricket/{proj_key}/"
	DefaultAuthURL = "https://api.sports.roanuz.com/v5/core/{proj_key}/auth/"
)

// Project identifies the monitored project and its credentials.
type Project struct {
	Key     string `yaml:"key"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	AuthURL string `yaml:"auth_url"`

	// TokenMargin is how long before expiry a cached token is refreshed.
	TokenMargin time.Duration `yaml:"token_margin"`
}

// Probe configures the probe executor.
type Probe struct {
	Timeout         time.Duration `yaml:"timeout"`
	SlowThresholdMS int64         `yaml:"slow_threshold_ms"`

	// Concurrency bounds parallel probes per cycle; 1 is sequential.
	Concurrency int `yaml:"concurrency"`
}

// Schedule configures the cycle scheduler.
type Schedule struct {
	Interval time.Duration `yaml:"interval"`
	Spec     string        `yaml:"spec"`
	Eager    *bool         `yaml:"eager"`
}

// Server configures the HTTP listener.
type Server struct {
	ListenAddress string        `yaml:"listen_address"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
}

// Storage selects the endpoint and health log backing store.
type Storage struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Telemetry configures logging, metrics and tracing.
type Telemetry struct {
	LogLevel        string  `yaml:"log_level"`
	MetricsEnabled  bool    `yaml:"metrics_enabled"`
	MetricsExporter string  `yaml:"metrics_exporter"`
	TracingEnabled  bool    `yaml:"tracing_enabled"`
	TracingExporter string  `yaml:"tracing_exporter"`
	TraceSamplePct  float64 `yaml:"trace_sample_pct"`
}

// Config is the full daemon configuration.
type Config struct {
	Project   Project   `yaml:"project"`
	Probe     Probe     `yaml:"probe"`
	Schedule  Schedule  `yaml:"schedule"`
	Server    Server    `yaml:"server"`
	Storage   Storage   `yaml:"storage"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Load reads configuration. A .env file in the working directory is loaded
// first when present. When path is empty, ./probeops.yaml is used if it
// exists; an explicit path that does not exist is an error. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	resolved, found, err := discover(path)
	if err != nil {
		return nil, err
	}
	if found {
		b, err := os.ReadFile(resolved)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", resolved, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", resolved, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	// credentials may be environment references rather than literals
	apiKey, err := secret.ExpandEnvStrict(cfg.Project.APIKey)
	if err != nil {
		return nil, fmt.Errorf("config: resolving api key: %w", err)
	}
	cfg.Project.APIKey = apiKey

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discover(explicitPath string) (string, bool, error) {
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		clean = filepath.Clean(clean)
		info, err := os.Stat(clean)
		if err != nil {
			return "", false, fmt.Errorf("config: file %q not found", clean)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config: %q is a directory", clean)
		}
		return clean, true, nil
	}

	info, err := os.Stat(projectConfigName)
	if err == nil && !info.IsDir() {
		return projectConfigName, true, nil
	}
	return "", false, nil
}

func (c *Config) applyEnv() {
	setString(&c.Project.Key, "PROBEOPS_PROJECT_KEY")
	setString(&c.Project.APIKey, "PROBEOPS_API_KEY")
	setString(&c.Project.BaseURL, "PROBEOPS_BASE_URL")
	setString(&c.Project.AuthURL, "PROBEOPS_AUTH_URL")
	setString(&c.Server.ListenAddress, "PROBEOPS_LISTEN_ADDRESS")
	setString(&c.Storage.Driver, "PROBEOPS_STORAGE_DRIVER")
	setString(&c.Storage.Path, "PROBEOPS_STORAGE_PATH")
	setString(&c.Telemetry.LogLevel, "PROBEOPS_LOG_LEVEL")
	setString(&c.Schedule.Spec, "PROBEOPS_SCHEDULE_SPEC")
	setDuration(&c.Schedule.Interval, "PROBEOPS_INTERVAL")
	setDuration(&c.Probe.Timeout, "PROBEOPS_PROBE_TIMEOUT")
	setInt(&c.Probe.Concurrency, "PROBEOPS_PROBE_CONCURRENCY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Project.BaseURL == "" {
		c.Project.BaseURL = DefaultBaseURL
	}
	if c.Project.AuthURL == "" {
		c.Project.AuthURL = DefaultAuthURL
	}
	if c.Project.TokenMargin == 0 {
		c.Project.TokenMargin = 60 * time.Second
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = 10 * time.Second
	}
	if c.Probe.SlowThresholdMS == 0 {
		c.Probe.SlowThresholdMS = 1000
	}
	if c.Probe.Concurrency == 0 {
		c.Probe.Concurrency = 1
	}
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 30 * time.Minute
	}
	if c.Schedule.Eager == nil {
		eager := true
		c.Schedule.Eager = &eager
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// a full on-demand cycle can take many probe timeouts
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "probeops.db"
	}
	if c.Telemetry.LogLevel == "" {
		c.Telemetry.LogLevel = "info"
	}
	if c.Telemetry.MetricsExporter == "" {
		c.Telemetry.MetricsExporter = "prometheus"
	}
	if c.Telemetry.TracingExporter == "" {
		c.Telemetry.TracingExporter = "none"
	}
}

// Validate checks cross-field constraints after defaults are applied.
func (c *Config) Validate() error {
	if c.Project.Key == "" {
		return errors.New("config: project key is required")
	}
	if c.Project.APIKey == "" {
		return errors.New("config: api key is required")
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Probe.Concurrency < 1 {
		return fmt.Errorf("config: probe concurrency must be at least 1, got %d", c.Probe.Concurrency)
	}
	if c.Schedule.Interval < time.Second {
		return fmt.Errorf("config: schedule interval %s is below one second", c.Schedule.Interval)
	}
	return nil
}
