package monitor

import "errors"

// Sentinel errors for monitor operations.
var (
	// ErrTokenUnavailable indicates the cycle could not acquire a bearer
	// token and no probes were attempted.
	ErrTokenUnavailable = errors.New("monitor: token unavailable")
)
