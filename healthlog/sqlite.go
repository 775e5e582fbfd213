package healthlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable health log backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the health log database at the given
// path and ensures the schema exists.
func NewSQLiteStore(ctx context.Context, dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("healthlog: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("healthlog: ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("healthlog: migrate: %w", err)
	}
	return store, nil
}

// NewSQLiteStoreFromDB wraps an existing database handle, ensuring the
// schema exists. The caller keeps ownership of the handle.
func NewSQLiteStoreFromDB(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.migrate(ctx); err != nil {
		return nil, fmt.Errorf("healthlog: migrate: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// log_time is stored as unix nanoseconds: the newest-first reads order by
// it, and variable-width text timestamps do not sort correctly.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS health_logs_by_api (
	project_key      TEXT NOT NULL,
	endpoint_key     TEXT NOT NULL,
	log_time         INTEGER NOT NULL,
	url              TEXT NOT NULL,
	method           TEXT NOT NULL,
	status           TEXT NOT NULL,
	response_time_ms INTEGER NOT NULL,
	status_code      INTEGER NOT NULL,
	error_message    TEXT NOT NULL DEFAULT '',
	response_json    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_health_logs_key_time
	ON health_logs_by_api (project_key, endpoint_key, log_time DESC);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append records one probe outcome.
func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	if entry.ProjectKey == "" || entry.EndpointKey == "" {
		return ErrMissingKey
	}

	query := `
INSERT INTO health_logs_by_api (
	project_key, endpoint_key, log_time, url, method,
	status, response_time_ms, status_code, error_message, response_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		entry.ProjectKey,
		entry.EndpointKey,
		entry.LogTime.UnixNano(),
		entry.URL,
		entry.Method,
		entry.Status,
		entry.ResponseTimeMS,
		entry.StatusCode,
		entry.ErrorMessage,
		entry.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("healthlog: append: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for the pair, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, projectKey, endpointKey string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
SELECT project_key, endpoint_key, log_time, url, method,
       status, response_time_ms, status_code, error_message, response_json
FROM health_logs_by_api
WHERE project_key = ? AND endpoint_key = ?
ORDER BY log_time DESC
LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, projectKey, endpointKey, limit)
	if err != nil {
		return nil, fmt.Errorf("healthlog: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var logTime int64
		if err := rows.Scan(
			&e.ProjectKey, &e.EndpointKey, &logTime, &e.URL, &e.Method,
			&e.Status, &e.ResponseTimeMS, &e.StatusCode, &e.ErrorMessage, &e.ResponseBody,
		); err != nil {
			return nil, fmt.Errorf("healthlog: scan entry: %w", err)
		}
		e.LogTime = time.Unix(0, logTime).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
