package collection

import (
	"fmt"
	"time"

	"assetdesk/internal/blob"
	"assetdesk/pkg/domain"
)

// DefaultDeleteDelay is the pause between confirming a delete and committing
// it, long enough for a UI to show a pending state.
const DefaultDeleteDelay = 800 * time.Millisecond

// Option configures a Controller.
type Option func(*controllerOptions)

type referenceCheck func(entity domain.EntityKind, rec any) error

type controllerOptions struct {
	logger      Logger
	clock       Clock
	metrics     MetricsRecorder
	tracer      Tracer
	audit       AuditRecorder
	searchMode  SearchMode
	pageSize    int
	ttl         time.Duration
	deleteDelay time.Duration
	deliverer   Deliverer
	references  []referenceCheck
}

func defaultControllerOptions() controllerOptions {
	return controllerOptions{
		logger:      noopLogger{},
		clock:       systemClock{},
		metrics:     noopMetricsRecorder{},
		tracer:      noopTracer{},
		audit:       noopAuditRecorder{},
		pageSize:    DefaultPageSize,
		ttl:         DefaultNotificationTTL,
		deleteDelay: DefaultDeleteDelay,
		deliverer:   NewBlobDeliverer(blob.NewMemory(), "exports"),
	}
}

// WithLogger sets the structured logger. Nil keeps the no-op logger.
func WithLogger(logger Logger) Option {
	return func(o *controllerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source used for notifications, change records and
// export filenames.
func WithClock(clock Clock) Option {
	return func(o *controllerOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(o *controllerOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *controllerOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithAuditRecorder sets the audit sink for mutations.
func WithAuditRecorder(rec AuditRecorder) Option {
	return func(o *controllerOptions) {
		if rec != nil {
			o.audit = rec
		}
	}
}

// WithSearchMode selects substring (default) or fuzzy search.
func WithSearchMode(mode SearchMode) Option {
	return func(o *controllerOptions) { o.searchMode = mode }
}

// WithPageSize sets the page size for schemas that do not declare one.
// Non-positive values are ignored.
func WithPageSize(size int) Option {
	return func(o *controllerOptions) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithNotificationTTL sets how long notifications stay active.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(o *controllerOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithDeleteDelay sets the pause before a confirmed delete commits; zero
// commits immediately.
func WithDeleteDelay(d time.Duration) Option {
	return func(o *controllerOptions) {
		if d >= 0 {
			o.deleteDelay = d
		}
	}
}

// WithDeliverer sets where exports are written. The default keeps them in an
// in-memory blob store.
func WithDeliverer(d Deliverer) Option {
	return func(o *controllerOptions) {
		if d != nil {
			o.deliverer = d
		}
	}
}

// WithReference requires field, when non-empty, to name an identity present
// in target. Records of a type other than T are not checked.
func WithReference[T any](field string, value func(T) string, target Taken) Option {
	return func(o *controllerOptions) {
		o.references = append(o.references, func(entity domain.EntityKind, rec any) error {
			r, ok := rec.(T)
			if !ok {
				return nil
			}
			v := value(r)
			if v == "" || target.Has(v) {
				return nil
			}
			return domain.ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf("references unknown record %q", v)}
		})
	}
}
