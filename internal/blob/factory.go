package blob

import (
	"context"
	"fmt"

	"assetdesk/internal/infra/blob/fs"
	memorystore "assetdesk/internal/infra/blob/memory"
	infraS3 "assetdesk/internal/infra/blob/s3"
)

// S3Config configures the S3-compatible backend.
type S3Config = infraS3.Config

// Config selects and configures a backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the Store named by cfg.Driver; the empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// NewFilesystem returns a Store rooted at the given directory.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}

// NewMemory returns an in-memory Store.
func NewMemory() Store { return memorystore.New() }

// NewS3 returns an S3-backed Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return infraS3.New(ctx, cfg)
}

// NewMockS3ForTests exposes the fake-endpoint S3 store for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
