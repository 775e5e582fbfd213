package healthlog

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for the health log.
var (
	// ErrMissingKey indicates an entry without a project or endpoint key.
	ErrMissingKey = errors.New("healthlog: entry missing project or endpoint key")
)

// Entry is one probe outcome in the health log.
//
// An entry belongs to exactly one (ProjectKey, EndpointKey) pair.
// ResponseTimeMS is -1 and StatusCode is 500 when no response was received.
type Entry struct {
	ProjectKey     string    `json:"project_key"`
	EndpointKey    string    `json:"endpoint_key"`
	LogTime        time.Time `json:"log_time"`
	URL            string    `json:"url"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	StatusCode     int       `json:"status_code"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ResponseBody   string    `json:"response_json,omitempty"`
}

// Store is the append-only sink for probe outcomes.
//
// Append must not fail silently: a write failure is returned to the caller,
// who logs it and carries on — the probe already happened, and losing one
// log entry is an accepted degradation, not a reason to fail the cycle.
//
// Recent returns up to limit entries for the pair, newest first. Callers
// with different limits (recent view vs uptime window) must get
// independently bounded results.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, projectKey, endpointKey string, limit int) ([]Entry, error)
}
