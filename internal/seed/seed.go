// Package seed selects and reads the initial records handed to each screen's
// controller. Concrete backends live under internal/infra/seed and are only
// reachable through this package.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"assetdesk/internal/infra/seed/embedded"
	"assetdesk/internal/infra/seed/postgres"
	"assetdesk/internal/infra/seed/sqlite"
	"assetdesk/internal/seed/core"
	"assetdesk/pkg/domain"
)

type (
	// Driver identifies a seed backend.
	Driver = core.Driver
	// Source yields the initial records of each screen.
	Source = core.Source
	// Writer is implemented by sources that can be populated.
	Writer = core.Writer
)

// Seed drivers.
const (
	DriverNone     = core.DriverNone
	DriverEmbedded = core.DriverEmbedded
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
)

// ErrNoSeed is returned when a source has no records for a kind.
var ErrNoSeed = core.ErrNoSeed

// Config selects a backend.
type Config struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Open returns the source named by cfg.Driver; an empty driver means embedded.
func Open(ctx context.Context, cfg Config) (Source, error) {
	switch Driver(cfg.Driver) {
	case "", DriverEmbedded:
		return embedded.New(), nil
	case DriverNone:
		return None(), nil
	case DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	case DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported seed driver %q", cfg.Driver)
	}
}

// Embedded returns the fixtures compiled into the binary.
func Embedded() Source { return embedded.New() }

// None returns a source with no records for any kind.
func None() Source { return noneSource{} }

type noneSource struct{}

func (noneSource) Driver() Driver { return DriverNone }

func (noneSource) Load(_ context.Context, kind domain.EntityKind) ([]byte, error) {
	return nil, fmt.Errorf("%s: %w", kind, ErrNoSeed)
}

func (noneSource) Close() error { return nil }

// Records decodes the seed records for kind. A nil source, or one without
// records for kind, yields an empty slice.
func Records[T any](ctx context.Context, src Source, kind domain.EntityKind) ([]T, error) {
	if src == nil {
		return nil, nil
	}
	payload, err := src.Load(ctx, kind)
	if errors.Is(err, ErrNoSeed) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode %s seed from %s: %w", kind, src.Driver(), err)
	}
	return records, nil
}

// Copy writes every kind available in from into to and reports how many kinds
// were copied.
func Copy(ctx context.Context, from Source, to Source) (int, error) {
	w, ok := to.(Writer)
	if !ok {
		return 0, fmt.Errorf("seed driver %s is read-only", to.Driver())
	}
	copied := 0
	for _, kind := range domain.Kinds() {
		payload, err := from.Load(ctx, kind)
		if errors.Is(err, ErrNoSeed) {
			continue
		}
		if err != nil {
			return copied, err
		}
		if err := w.Put(ctx, kind, payload); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
