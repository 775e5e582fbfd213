// Package health reports the readiness of the daemon's own infrastructure:
// the backing database, the token cache and anything else registered. It is
// about this process, not about the probed endpoints; those are the
// monitor package's concern.
package health

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Status is the readiness of one component or of the whole process.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component works but with reduced
	// capability.
	StatusDegraded
	// StatusUnhealthy indicates the component is not functioning.
	StatusUnhealthy
)

// MarshalJSON renders the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of one readiness check.
type Result struct {
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return Result{Status: StatusUnhealthy, Message: message}
}

// Check performs one readiness check.
type Check func(ctx context.Context) Result

// Report is the aggregate of all registered checks. The overall status is
// the worst individual status.
type Report struct {
	Status Status            `json:"-"`
	Checks map[string]Result `json:"checks"`
}

// Checker runs registered readiness checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewChecker creates a checker. Each check runs under the given per-check
// timeout; zero means 5 seconds.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		checks:  make(map[string]Check),
		timeout: timeout,
	}
}

// Register adds a named check, replacing any previous check with the same
// name.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes all registered checks and aggregates their results.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	report := Report{Checks: make(map[string]Result, len(checks))}
	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		result := check(checkCtx)
		result.Duration = time.Since(start)
		cancel()

		report.Checks[name] = result
		if result.Status > report.Status {
			report.Status = result.Status
		}
	}
	return report
}
