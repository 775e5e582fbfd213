// Package healthlog persists probe outcomes as an append-only time series.
//
// Every probe produces exactly one Entry, keyed by (project key, endpoint
// key) and timestamped at probe time. Entries are never mutated or deleted
// here; retention is an external concern. Reads return the newest entries
// first, bounded by a caller-chosen limit, which serves both the recent
// history view (limit 5) and uptime computation (limit 20).
//
// Two Store implementations are provided: a durable SQLite store and an
// in-memory store for tests and ephemeral runs.
package healthlog
