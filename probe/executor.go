package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// TokenHeader is the request header carrying the bearer credential.
const TokenHeader = "rs-token"

const (
	// DefaultTimeout is the per-probe request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultSlowThresholdMS separates online from slow on HTTP 200.
	DefaultSlowThresholdMS = 1000
)

// Outcome is the result of a single probe.
//
// A probe has no error return: failures are carried in the Outcome. When the
// request never completed, StatusCode is 500, ResponseTimeMS is -1 and
// ErrorMessage holds the failure description.
type Outcome struct {
	Status         Status
	StatusCode     int
	ResponseTimeMS int64
	Body           string
	ErrorMessage   string
}

// ExecutorConfig configures the probe executor.
type ExecutorConfig struct {
	// Timeout is the maximum duration for one probe request.
	// Default: 10 seconds
	Timeout time.Duration

	// SlowThresholdMS is the response time above which an HTTP 200 is
	// classified as slow rather than online.
	// Default: 1000
	SlowThresholdMS int64

	// HTTPClient is the HTTP client to use. If nil, a client with the
	// configured timeout is used.
	HTTPClient *http.Client
}

// Executor issues single authenticated probe requests.
type Executor struct {
	config ExecutorConfig
	client *http.Client
}

// NewExecutor creates a new probe executor.
func NewExecutor(config ...ExecutorConfig) *Executor {
	cfg := ExecutorConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SlowThresholdMS <= 0 {
		cfg.SlowThresholdMS = DefaultSlowThresholdMS
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Executor{config: cfg, client: client}
}

// Do issues one probe request and classifies the outcome.
//
// The request carries the bearer token in the rs-token header and is bounded
// by the configured timeout. Do never returns an error; see Outcome.
func (e *Executor) Do(ctx context.Context, method, url, bearer string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return offlineOutcome(err)
	}
	req.Header.Set(TokenHeader, bearer)

	start := time.Now()
	resp, err := e.client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return offlineOutcome(err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return offlineOutcome(readErr)
	}

	return Outcome{
		Status:         Classify(resp.StatusCode, elapsed, e.config.SlowThresholdMS),
		StatusCode:     resp.StatusCode,
		ResponseTimeMS: elapsed,
		Body:           string(body),
	}
}

// offlineOutcome is the fixed shape for requests that never completed.
func offlineOutcome(err error) Outcome {
	return Outcome{
		Status:         StatusOffline,
		StatusCode:     500,
		ResponseTimeMS: -1,
		ErrorMessage:   err.Error(),
	}
}
