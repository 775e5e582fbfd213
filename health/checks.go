package health

import (
	"context"
	"time"

	"github.com/jonwraymond/probeops/token"
)

// Pinger is the subset of *sql.DB needed by the database check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Database checks that the backing database answers a ping.
func Database(db Pinger) Check {
	return func(ctx context.Context) Result {
		if err := db.PingContext(ctx); err != nil {
			return Unhealthy("database unreachable", err)
		}
		return Healthy("database reachable")
	}
}

// TokenCache reports the state of the cached auth token. An empty cache is
// degraded, not unhealthy: the next cycle will fetch a token on demand.
func TokenCache(manager *token.Manager) Check {
	return func(context.Context) Result {
		auth := manager.Context()
		if auth == nil {
			return Degraded("no token cached yet")
		}
		if !auth.Valid(time.Now(), 0) {
			return Degraded("cached token expired")
		}
		return Healthy("token cached")
	}
}
