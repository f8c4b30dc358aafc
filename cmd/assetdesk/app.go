package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"assetdesk/internal/blob"
	"assetdesk/internal/collection"
	"assetdesk/internal/config"
	"assetdesk/internal/logging"
	"assetdesk/internal/screens"
	"assetdesk/internal/seed"
)

type configLoader func() (config.Configuration, error)

func loadConfig() (config.Configuration, error) { return config.Load() }

// app holds the collaborators shared by every command of one invocation.
type app struct {
	cfg      config.Configuration
	log      *logging.Logger
	store    blob.Store
	src      seed.Source
	desk     *screens.Desk
	audit    *collection.MemoryAuditLog
	expvar   *collection.ExpvarMetricsRecorder
	registry *prometheus.Registry
}

type appOptions struct {
	trace  io.Writer
	logger *logging.Logger
}

func newApp(ctx context.Context, cfg config.Configuration, o appOptions) (*app, error) {
	a := &app{cfg: cfg, audit: &collection.MemoryAuditLog{}}
	a.log = o.logger
	if a.log == nil {
		l, err := logging.New(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		a.log = l
	}

	store, err := blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.Blob.Driver),
		FSRoot: cfg.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          cfg.Blob.S3.Region,
			Bucket:          cfg.Blob.S3.Bucket,
			Endpoint:        cfg.Blob.S3.Endpoint,
			AccessKeyID:     cfg.Blob.S3.AccessKeyID,
			SecretAccessKey: cfg.Blob.S3.SecretAccessKey,
			SessionToken:    cfg.Blob.S3.SessionToken,
			PathStyle:       cfg.Blob.S3.PathStyle,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open export store: %w", err)
	}
	a.store = store

	src, err := seed.Open(ctx, seed.Config{
		Driver:      cfg.Seed.Driver,
		SQLitePath:  cfg.Seed.SQLitePath,
		PostgresDSN: cfg.Seed.PostgresDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open seed source: %w", err)
	}
	a.src = src

	opts := []collection.Option{
		collection.WithLogger(a.log),
		collection.WithPageSize(cfg.Collection.PageSize),
		collection.WithNotificationTTL(cfg.Collection.NotificationTTL),
		collection.WithDeleteDelay(cfg.Collection.DeleteDelay),
		collection.WithDeliverer(collection.NewBlobDeliverer(store, cfg.Blob.Prefix)),
		collection.WithAuditRecorder(a.audit),
	}
	if cfg.Collection.FuzzySearch {
		opts = append(opts, collection.WithSearchMode(collection.SearchFuzzy))
	}
	if o.trace != nil {
		opts = append(opts, collection.WithTracer(collection.NewJSONTracer(o.trace)))
	}
	switch cfg.MetricsBackend {
	case "expvar":
		a.expvar = collection.NewExpvarMetricsRecorder("")
		opts = append(opts, collection.WithMetricsRecorder(a.expvar))
	case "prometheus":
		a.registry = prometheus.NewRegistry()
		rec, err := collection.NewPrometheusMetricsRecorder(a.registry)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, collection.WithMetricsRecorder(rec))
	}

	desk, err := screens.Env{}.OpenDesk(ctx, src, screens.DeskOptions{
		EnforceReferences: cfg.Collection.EnforceRefs,
		Controller:        opts,
	})
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	a.desk = desk
	a.log.Debug("assetdesk ready", "blob_driver", cfg.Blob.Driver, "seed_driver", src.Driver(), "metrics", cfg.MetricsBackend)
	return a, nil
}

func (a *app) close() error {
	a.desk.Close()
	a.reportMetrics()
	for _, e := range a.audit.Entries() {
		a.log.Debug("audit", "operation", e.Operation, "entity", e.Entity, "id", e.EntityID, "status", e.Status)
	}
	err := a.src.Close()
	_ = a.log.Sync() // EINVAL on terminals
	return err
}

func (a *app) reportMetrics() {
	if a.expvar != nil {
		snap := a.expvar.Snapshot()
		for op, results := range snap.Results {
			a.log.Debug("metrics", "operation", op, "success", results["success"], "error", results["error"], "duration_ms", snap.DurationsMS[op])
		}
	}
	if a.registry != nil {
		families, err := a.registry.Gather()
		if err != nil {
			a.log.Warn("gather metrics", "error", err)
			return
		}
		for _, mf := range families {
			a.log.Debug("metrics", "family", mf.GetName(), "series", len(mf.GetMetric()))
		}
	}
}

var errUnknownResource = errors.New("unknown resource")

func (a *app) screen(name string) (screens.Screen, error) {
	kind, err := parseKind(name)
	if err != nil {
		return nil, err
	}
	s, ok := a.desk.Screen(kind)
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownResource, name)
	}
	return s, nil
}
