package token

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultMargin is how long before expiry a cached token is considered
// stale and refreshed.
const DefaultMargin = 60 * time.Second

// Fetcher obtains a fresh AuthContext from the auth service.
type Fetcher interface {
	Fetch(ctx context.Context, projectKey string) (*AuthContext, error)
}

// RefreshRecorder observes token fetch attempts. observe.Metrics
// satisfies it.
type RefreshRecorder interface {
	RecordTokenRefresh(ctx context.Context, err error)
}

// ManagerConfig configures the token manager.
type ManagerConfig struct {
	// ProjectKey is the project tokens are fetched for.
	ProjectKey string

	// Margin is the refresh safety margin before expiry.
	// Default: 60 seconds
	Margin time.Duration

	// Now returns the current time. Injectable for tests.
	Now func() time.Time

	// Metrics observes fetch attempts, both outcomes. Cached reads are
	// not fetches and are not recorded. Optional.
	Metrics RefreshRecorder
}

// Manager owns the single cached AuthContext for a project.
//
// Manager is safe for concurrent use. Reads take the cached context; a
// refresh replaces it wholesale under a single-writer rule, and concurrent
// callers needing a refresh share one fetch.
type Manager struct {
	fetcher Fetcher
	config  ManagerConfig

	mu      sync.RWMutex
	current *AuthContext
	sf      singleflight.Group
}

// NewManager creates a new token manager.
func NewManager(fetcher Fetcher, config ManagerConfig) *Manager {
	if config.Margin <= 0 {
		config.Margin = DefaultMargin
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Manager{fetcher: fetcher, config: config}
}

// Token returns a valid bearer token, fetching a fresh one when the cache
// is empty or within the safety margin of expiry. A fetch failure leaves
// the cached state untouched and is returned to the caller.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if current.Valid(m.config.Now(), m.config.Margin) {
		return current.Bearer, nil
	}

	v, err, _ := m.sf.Do("refresh", func() (any, error) {
		// A waiter queued behind the winning fetch sees the fresh context.
		m.mu.RLock()
		current := m.current
		m.mu.RUnlock()
		if current.Valid(m.config.Now(), m.config.Margin) {
			return current, nil
		}

		// The fetch is shared by every waiter on this flight, so it must
		// not die with the winning caller's context. The fetcher's own
		// timeout still bounds it.
		fetchCtx := context.WithoutCancel(ctx)
		fresh, err := m.fetcher.Fetch(fetchCtx, m.config.ProjectKey)
		if m.config.Metrics != nil {
			m.config.Metrics.RecordTokenRefresh(fetchCtx, err)
		}
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.current = fresh
		m.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return "", err
	}
	return v.(*AuthContext).Bearer, nil
}

// Context returns the cached AuthContext, or nil if none has been fetched.
// The returned value is a snapshot; it is never mutated after creation.
func (m *Manager) Context() *AuthContext {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Static is a Fetcher-independent token source wrapping a fixed bearer,
// used when a caller supplies its own token (e.g. from a request header).
type Static string

// Token returns the wrapped bearer.
func (s Static) Token(_ context.Context) (string, error) {
	return string(s), nil
}
