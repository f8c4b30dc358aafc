// Package sqlite reads seed payloads from a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"assetdesk/internal/seed/core"
	"assetdesk/pkg/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS seed (
	kind TEXT PRIMARY KEY,
	payload BLOB NOT NULL
)`

// Source stores one JSON array per entity kind.
type Source struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// New opens (creating when needed) the SQLite file at path.
func New(path string) (*Source, error) {
	if path == "" {
		path = "assetdesk.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create seed table: %w", err)
	}
	return &Source{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Source) Path() string { return s.path }

// Driver implements core.Source.
func (s *Source) Driver() core.Driver { return core.DriverSQLite }

// Load returns the stored payload for kind.
func (s *Source) Load(ctx context.Context, kind domain.EntityKind) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM seed WHERE kind = ?`, string(kind)).Scan(&payload)
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
	if err := checkArray(payload); err != nil {
		return fmt.Errorf("seed %s: %w", kind, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO seed(kind, payload) VALUES(?, ?)
		ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload`, string(kind), payload); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert seed %s: %w", kind, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed %s: %w", kind, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Source) Close() error { return s.db.Close() }

func checkArray(payload []byte) error {
	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return fmt.Errorf("payload is not a JSON array: %w", err)
	}
	return nil
}
