package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRegistry is the durable endpoint registry backed by SQLite.
type SQLiteRegistry struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRegistry opens (or creates) the registry database at the given
// path and ensures the schema exists.
func NewSQLiteRegistry(ctx context.Context, dataSourceName string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("registry: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: ping database: %w", err)
	}

	reg := &SQLiteRegistry{db: db, now: time.Now}
	if err := reg.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: migrate: %w", err)
	}
	return reg, nil
}

// NewSQLiteRegistryFromDB wraps an existing database handle, ensuring the
// schema exists. The caller keeps ownership of the handle.
func NewSQLiteRegistryFromDB(ctx context.Context, db *sql.DB) (*SQLiteRegistry, error) {
	reg := &SQLiteRegistry{db: db, now: time.Now}
	if err := reg.migrate(ctx); err != nil {
		return nil, fmt.Errorf("registry: migrate: %w", err)
	}
	return reg, nil
}

// Close closes the database connection.
func (r *SQLiteRegistry) Close() error { return r.db.Close() }

// created_at is stored as unix nanoseconds so the definitional List order
// compares numerically rather than as text.
func (r *SQLiteRegistry) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS api_endpoints (
	api_key     TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	sport       TEXT NOT NULL DEFAULT '',
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_api_endpoints_created ON api_endpoints (created_at, api_key);
`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

const endpointColumns = "api_key, name, description, category, sport, method, url"

func scanEndpoint(scan func(dest ...any) error) (Endpoint, error) {
	var e Endpoint
	err := scan(&e.Key, &e.Name, &e.Description, &e.Category, &e.Sport, &e.Method, &e.URLTemplate)
	return e, err
}

// List returns all endpoints, ordered by creation time then key.
func (r *SQLiteRegistry) List(ctx context.Context) ([]Endpoint, error) {
	query := fmt.Sprintf("SELECT %s FROM api_endpoints ORDER BY created_at, api_key", endpointColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("registry: list endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("registry: scan endpoint: %w", err)
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// Get returns the endpoint with the given key.
func (r *SQLiteRegistry) Get(ctx context.Context, key string) (*Endpoint, error) {
	query := fmt.Sprintf("SELECT %s FROM api_endpoints WHERE api_key = ?", endpointColumns)
	e, err := scanEndpoint(r.db.QueryRowContext(ctx, query, key).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry: get endpoint: %w", err)
	}
	return &e, nil
}

// Create adds a new endpoint, generating a key when none is set.
func (r *SQLiteRegistry) Create(ctx context.Context, endpoint Endpoint) (*Endpoint, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	if endpoint.Key == "" {
		endpoint.Key = NewKey(r.now())
	}

	query := `
INSERT INTO api_endpoints (api_key, name, description, category, sport, method, url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		endpoint.Key, endpoint.Name, endpoint.Description, endpoint.Category,
		endpoint.Sport, endpoint.Method, endpoint.URLTemplate,
		r.now().UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("registry: create endpoint: %w", err)
	}
	return &endpoint, nil
}

// Update replaces the definition for an existing key.
func (r *SQLiteRegistry) Update(ctx context.Context, endpoint Endpoint) error {
	if err := endpoint.Validate(); err != nil {
		return err
	}

	query := `
UPDATE api_endpoints
SET name = ?, description = ?, category = ?, sport = ?, method = ?, url = ?
WHERE api_key = ?`
	res, err := r.db.ExecContext(ctx, query,
		endpoint.Name, endpoint.Description, endpoint.Category,
		endpoint.Sport, endpoint.Method, endpoint.URLTemplate, endpoint.Key,
	)
	if err != nil {
		return fmt.Errorf("registry: update endpoint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the endpoint with the given key.
func (r *SQLiteRegistry) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM api_endpoints WHERE api_key = ?", key)
	if err != nil {
		return fmt.Errorf("registry: delete endpoint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure SQLiteRegistry implements Registry
var _ Registry = (*SQLiteRegistry)(nil)
