// Package postgres reads seed payloads from a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"assetdesk/internal/seed/core"
	"assetdesk/pkg/domain"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/assetdesk?sslmode=disable"
)

const schema = `CREATE TABLE IF NOT EXISTS seed (
	kind TEXT PRIMARY KEY,
	payload JSONB NOT NULL
)`

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Source stores one JSONB array per entity kind.
type Source struct {
	db *sql.DB
	mu sync.Mutex
}

// New connects to dsn (falling back to a local default) and ensures the seed
// table exists.
func New(ctx context.Context, dsn string) (*Source, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create seed table: %w", err)
	}
	return &Source{db: db}, nil
}

// DB exposes the underlying handle for integration hooks.
func (s *Source) DB() *sql.DB { return s.db }

// Driver implements core.Source.
func (s *Source) Driver() core.Driver { return core.DriverPostgres }

// Load returns the stored payload for kind.
func (s *Source) Load(ctx context.Context, kind domain.EntityKind) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM seed WHERE kind = $1`, string(kind)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", kind, core.ErrNoSeed)
	}
	if err != nil {
		return nil, fmt.Errorf("select seed %s: %w", kind, err)
	}
	return payload, nil
}

// Put replaces the payload for kind. The payload must be a JSON array.
func (s *Source) Put(ctx context.Context, kind domain.EntityKind, payload []byte) error {
	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return fmt.Errorf("seed %s: payload is not a JSON array: %w", kind, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO seed (kind, payload) VALUES ($1, $2)
		ON CONFLICT (kind) DO UPDATE SET payload = EXCLUDED.payload`, string(kind), payload); err != nil {
		return fmt.Errorf("upsert seed %s: %w", kind, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Source) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
