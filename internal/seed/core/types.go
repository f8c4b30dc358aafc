// Package core defines the seed source contract shared by the fixture
// backends.
package core

import (
	"context"
	"errors"

	"assetdesk/pkg/domain"
)

// Driver identifies a concrete seed backend.
type Driver string

const (
	// DriverNone starts every screen empty.
	DriverNone Driver = "none"
	// DriverEmbedded reads the YAML fixtures compiled into the binary.
	DriverEmbedded Driver = "embedded"
	// DriverSQLite reads seed payloads from a SQLite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres reads seed payloads from a PostgreSQL table.
	DriverPostgres Driver = "postgres"
)

// ErrNoSeed is returned when a source has no records for a kind.
var ErrNoSeed = errors.New("seed: no records for kind")

// Source yields the initial records of each screen as a JSON array.
type Source interface {
	Driver() Driver
	Load(ctx context.Context, kind domain.EntityKind) ([]byte, error)
	Close() error
}

// Writer is implemented by sources that can be populated, so fixtures can be
// copied into a database.
type Writer interface {
	Put(ctx context.Context, kind domain.EntityKind, payload []byte) error
}
