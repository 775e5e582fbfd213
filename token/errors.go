package token

import "errors"

// Sentinel errors for token acquisition.
var (
	// ErrAuthFailed indicates the auth service rejected the request or
	// was unreachable.
	ErrAuthFailed = errors.New("token: auth request failed")

	// ErrMalformedResponse indicates the auth response was missing the
	// token or an expiry that could be determined.
	ErrMalformedResponse = errors.New("token: malformed auth response")
)
