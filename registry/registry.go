package registry

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for registry operations.
var (
	// ErrNotFound is returned when no endpoint has the requested key.
	ErrNotFound = errors.New("registry: endpoint not found")

	// ErrDuplicateKey is returned when creating an endpoint whose key
	// already exists.
	ErrDuplicateKey = errors.New("registry: duplicate endpoint key")

	// ErrInvalidEndpoint is returned for definitions missing required
	// fields.
	ErrInvalidEndpoint = errors.New("registry: invalid endpoint definition")
)

// Endpoint describes one externally monitored HTTP API.
//
// Endpoints are immutable for the duration of a probe cycle: a cycle works
// from the snapshot List returned.
type Endpoint struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Sport       string `json:"sport"`
	Method      string `json:"method"`
	URLTemplate string `json:"url"`
}

// Validate checks the fields required to probe the endpoint.
func (e Endpoint) Validate() error {
	if e.Name == "" || e.Method == "" || e.URLTemplate == "" {
		return ErrInvalidEndpoint
	}
	return nil
}

// Registry is the endpoint definition store.
//
// List returns all endpoints in definitional order; this ordering is part
// of the contract, cycle summaries preserve it. Get returns ErrNotFound
// for unknown keys. Create assigns a generated key when none is set.
type Registry interface {
	List(ctx context.Context) ([]Endpoint, error)
	Get(ctx context.Context, key string) (*Endpoint, error)
	Create(ctx context.Context, endpoint Endpoint) (*Endpoint, error)
	Update(ctx context.Context, endpoint Endpoint) error
	Delete(ctx context.Context, key string) error
}

// NewKey generates an endpoint key: "api_" followed by eight hex characters
// and the last six digits of the unix timestamp.
func NewKey(now time.Time) string {
	unique := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	ts := strconv.FormatInt(now.Unix(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	return "api_" + unique + ts
}
