// Package collection implements the list-management engine shared by every
// resource screen: search and filtering, pagination, identity-keyed
// mutations, transient notifications and export of the filtered view.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assetdesk/pkg/domain"
)

// Operation names reported to loggers, metrics, tracers and audit sinks.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpExport = "export"
)

// ErrClosed is returned by mutations and exports on a closed controller.
var ErrClosed = errors.New("collection: controller closed")

// View is the state a screen renders: the current page window plus totals,
// the query that produced it and the active notifications.
type View[T any] struct {
	Items          []T
	Total          int
	Page           int
	TotalPages     int
	PageSize       int
	Query          Query
	Notifications  []domain.Notification
	PendingDeletes []string
}

// Controller owns one screen's collection and query state. All methods are
// safe for concurrent use.
type Controller[T any] struct {
	mu       sync.Mutex
	schema   Schema[T]
	store    *Store[T]
	query    Query
	pageSize int
	pending  map[string]struct{}
	notifier *Notifier
	opts     controllerOptions
	label    string
	closed   bool
}

// New validates schema and seed and returns a controller holding seed in the
// given order. Seed records must carry unique, well-formed identities and
// pass the schema's validation.
func New[T any](schema Schema[T], seed []T, opts ...Option) (*Controller[T], error) {
	if err := schema.check(); err != nil {
		return nil, err
	}
	o := defaultControllerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	pageSize := schema.PageSize
	if pageSize <= 0 {
		pageSize = o.pageSize
	}

	store := NewStore(schema.Entity, schema.IdentityOf, schema.AssignIdentity)
	store.nowFn = o.clock.Now
	for i, rec := range seed {
		id := schema.IdentityOf(rec)
		if err := schema.Policy.Validate(id); err != nil {
			return nil, fmt.Errorf("seed %s[%d]: %w", schema.Entity, i, identityError(schema, err))
		}
		if schema.Validate != nil {
			if err := schema.Validate(rec); err != nil {
				return nil, fmt.Errorf("seed %s %s: %w", schema.Entity, id, err)
			}
		}
	}
	if err := store.load(seed); err != nil {
		return nil, fmt.Errorf("seed %s: %w", schema.Entity, err)
	}

	return &Controller[T]{
		schema:   schema,
		store:    store,
		query:    NewQuery(),
		pageSize: pageSize,
		pending:  make(map[string]struct{}),
		notifier: NewNotifier(o.ttl, o.clock),
		opts:     o,
		label:    cases.Title(language.English).String(string(schema.Entity)),
	}, nil
}

// Schema returns the controller's schema.
func (c *Controller[T]) Schema() Schema[T] { return c.schema }

// Has reports whether a record with identity id exists. Controllers satisfy
// Taken so they can be the target of WithReference.
func (c *Controller[T]) Has(id string) bool { return c.store.Has(id) }

// IDs returns every identity in collection order.
func (c *Controller[T]) IDs() []string { return c.store.IDs() }

// Records returns a copy of the whole collection in order.
func (c *Controller[T]) Records() []T { return c.store.List() }

// Filtered returns the derived view for the current query, ignoring pages.
func (c *Controller[T]) Filtered() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filteredLocked()
}

func (c *Controller[T]) filteredLocked() []T {
	return Filter(c.store.List(), c.query, c.schema, c.opts.searchMode)
}

// clampLocked re-applies the page bounds after the view may have changed size.
func (c *Controller[T]) clampLocked() {
	c.query.Page = ClampPage(c.query.Page, len(c.filteredLocked()), c.pageSize)
}

// View returns the current page and everything needed to render it.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	filtered := c.filteredLocked()
	page := Paginate(filtered, c.query.Page, c.pageSize)
	c.query.Page = page.CurrentPage
	q := c.query.clone()
	pending := make([]string, 0, len(c.pending))
	for id := range c.pending {
		pending = append(pending, id)
	}
	c.mu.Unlock()

	sort.Strings(pending)
	return View[T]{
		Items:          page.Items,
		Total:          page.Total,
		Page:           page.CurrentPage,
		TotalPages:     page.TotalPages,
		PageSize:       page.PageSize,
		Query:          q,
		Notifications:  c.notifier.Active(),
		PendingDeletes: pending,
	}
}

// Notifier exposes the notification channel.
func (c *Controller[T]) Notifier() *Notifier { return c.notifier }

// OnSearch replaces the search text and returns to the first page.
func (c *Controller[T]) OnSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Search = text
	c.query.Page = 1
}

// OnFilter sets the filter for a declared field and returns to the first
// page. "All" (or "All <Something>") clears the constraint.
func (c *Controller[T]) OnFilter(field, value string) error {
	if _, ok := c.schema.filterField(field); !ok {
		return domain.ValidationError{Entity: c.schema.Entity, Field: field, Reason: "not a filterable field"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if IsAllFilter(value) {
		delete(c.query.Filters, field)
	} else {
		c.query.Filters[field] = value
	}
	c.query.Page = 1
	return nil
}

// OnPageChange moves to page n, clamped to the available pages.
func (c *Controller[T]) OnPageChange(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Page = ClampPage(n, len(c.filteredLocked()), c.pageSize)
}

// NextPage advances one page; a no-op on the last page.
func (c *Controller[T]) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Page = ClampPage(c.query.Page+1, len(c.filteredLocked()), c.pageSize)
}

// PrevPage goes back one page; a no-op on the first page.
func (c *Controller[T]) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Page = ClampPage(c.query.Page-1, len(c.filteredLocked()), c.pageSize)
}

// OnCreate adds rec at the head of the collection. An empty identity is
// generated by the schema's policy; a supplied identity is validated and must
// be free.
func (c *Controller[T]) OnCreate(ctx context.Context, rec T) (T, error) {
	var created T
	err := c.run(ctx, OpCreate, domain.ActionCreate, c.schema.IdentityOf(rec), func(context.Context) (*domain.Change, string, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return nil, "", ErrClosed
		}
		id := c.schema.IdentityOf(rec)
		if id == "" {
			generated, err := c.schema.Policy.Generate(c.schema.Entity, c.store)
			if err != nil {
				return nil, "", identityError(c.schema, err)
			}
			id = generated
			c.schema.AssignIdentity(&rec, id)
		}
		// Generated identities are held to the same format as supplied ones.
		if err := c.schema.Policy.Validate(id); err != nil {
			return nil, id, identityError(c.schema, err)
		}
		if err := c.validate(rec); err != nil {
			return nil, id, err
		}
		out, change, err := c.store.Create(rec)
		if err != nil {
			return nil, id, err
		}
		created = out
		c.clampLocked()
		return &change, id, nil
	})
	if err != nil {
		return rec, err
	}
	return created, nil
}

// OnUpdate replaces the record stored under id, keeping its position and its
// identity.
func (c *Controller[T]) OnUpdate(ctx context.Context, id string, rec T) (T, error) {
	var updated T
	err := c.run(ctx, OpUpdate, domain.ActionUpdate, id, func(context.Context) (*domain.Change, string, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return nil, id, ErrClosed
		}
		if !c.store.Has(id) {
			return nil, id, domain.ErrNotFound{Entity: c.schema.Entity, ID: id}
		}
		c.schema.AssignIdentity(&rec, id)
		if err := c.validate(rec); err != nil {
			return nil, id, err
		}
		out, change, err := c.store.Update(id, rec)
		if err != nil {
			return nil, id, err
		}
		updated = out
		c.clampLocked()
		return &change, id, nil
	})
	if err != nil {
		return rec, err
	}
	return updated, nil
}

// OnDeleteRequested marks id as awaiting confirmation.
func (c *Controller[T]) OnDeleteRequested(id string) error {
	if id == "" {
		return domain.ValidationError{Entity: c.schema.Entity, Field: c.schema.identityField(), Reason: "required"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = struct{}{}
	return nil
}

// CancelDelete withdraws a pending delete request.
func (c *Controller[T]) CancelDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// OnDeleteConfirmed removes a record whose delete was requested. It waits the
// configured delay without holding the controller lock; if ctx ends first the
// delete is abandoned and the collection is left untouched.
func (c *Controller[T]) OnDeleteConfirmed(ctx context.Context, id string) error {
	return c.run(ctx, OpDelete, domain.ActionDelete, id, func(ctx context.Context) (*domain.Change, string, error) {
		c.mu.Lock()
		_, requested := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()
		if !requested {
			return nil, id, domain.ValidationError{Entity: c.schema.Entity, Field: c.schema.identityField(), Reason: "delete was not requested"}
		}

		if err := c.wait(ctx); err != nil {
			return nil, id, errAbandoned{err: err}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return nil, id, ErrClosed
		}
		_, change, err := c.store.Remove(id)
		if err != nil {
			return nil, id, err
		}
		c.clampLocked()
		return &change, id, nil
	})
}

func (c *Controller[T]) wait(ctx context.Context) error {
	if c.opts.deleteDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.opts.deleteDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// OnExport delivers the filtered view as CSV.
func (c *Controller[T]) OnExport(ctx context.Context) (Artifact, error) {
	return c.OnExportFormat(ctx, FormatCSV)
}

// OnExportFormat delivers the filtered view, ignoring pagination, in format.
func (c *Controller[T]) OnExportFormat(ctx context.Context, format Format) (Artifact, error) {
	var artifact Artifact
	resource := c.schema.resource()
	err := c.run(ctx, OpExport, "", "", func(ctx context.Context) (*domain.Change, string, error) {
		view := c.Filtered()
		payload, err := Serialize(format, resource, view, c.schema.Columns)
		if err != nil {
			return nil, "", domain.ExportError{Resource: resource, Stage: "serialize", Err: err}
		}
		filename := ExportFilename(resource, format, c.opts.clock.Now())
		a, err := c.opts.deliverer.Deliver(ctx, filename, payload, format.ContentType())
		if err != nil {
			return nil, "", domain.ExportError{Resource: resource, Stage: "deliver", Err: err}
		}
		a.Rows = len(view)
		artifact = a
		return nil, a.Filename, nil
	})
	return artifact, err
}

// Reject reports an operation that failed before reaching the collection,
// such as an undecodable record, through the same audit, metric and
// notification path as any other failed op. It returns err.
func (c *Controller[T]) Reject(ctx context.Context, op, id string, err error) error {
	return c.run(ctx, op, actionFor(op), id, func(context.Context) (*domain.Change, string, error) {
		return nil, id, err
	})
}

func actionFor(op string) domain.Action {
	switch op {
	case OpCreate:
		return domain.ActionCreate
	case OpUpdate:
		return domain.ActionUpdate
	case OpDelete:
		return domain.ActionDelete
	default:
		return ""
	}
}

// Dismiss removes a notification before it expires.
func (c *Controller[T]) Dismiss(id string) bool { return c.notifier.Dismiss(id) }

// Close cancels pending notification timers. A closed controller is terminal:
// later creates, updates, deletes and exports return ErrClosed without
// touching the collection. Queries keep working on the final state.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.notifier.Close()
}

func (c *Controller[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller[T]) validate(rec T) error {
	if c.schema.Validate != nil {
		if err := c.schema.Validate(rec); err != nil {
			return err
		}
	}
	for _, check := range c.opts.references {
		if err := check(c.schema.Entity, rec); err != nil {
			return err
		}
	}
	return nil
}

func identityError[T any](schema Schema[T], err error) error {
	var exhausted domain.ErrIdentityExhausted
	var conflict domain.ErrIdentityConflict
	if errors.As(err, &exhausted) || errors.As(err, &conflict) {
		return err
	}
	reason := err.Error()
	if errors.Is(err, domain.ErrIdentityRequired) {
		reason = "required"
	}
	return domain.ValidationError{Entity: schema.Entity, Field: schema.identityField(), Reason: reason}
}

type errAbandoned struct{ err error }

func (e errAbandoned) Error() string { return "abandoned: " + e.err.Error() }
func (e errAbandoned) Unwrap() error { return e.err }

// run wraps one operation with tracing, metrics, logging, audit and exactly
// one notification describing its outcome.
func (c *Controller[T]) run(ctx context.Context, op string, action domain.Action, id string, fn func(context.Context) (*domain.Change, string, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.isClosed() {
		c.opts.logger.Warn("collection operation rejected", "operation", op, "entity", string(c.schema.Entity), "id", id, "error", ErrClosed)
		return fmt.Errorf("%s %s: %w", op, c.schema.Entity, ErrClosed)
	}
	ctx, span := c.opts.tracer.Start(ctx, op)
	started := time.Now()
	change, subject, err := fn(ctx)
	duration := time.Since(started)
	if subject == "" {
		subject = id
	}
	span.End(err)
	c.opts.metrics.Observe(ctx, op, err == nil, duration)

	entity := string(c.schema.Entity)
	switch {
	case err == nil:
		c.opts.logger.Info("collection operation completed", "operation", op, "entity", entity, "id", subject, "duration", duration)
	case errors.As(err, new(errAbandoned)):
		c.opts.logger.Warn("collection operation abandoned", "operation", op, "entity", entity, "id", subject, "error", err)
	default:
		c.opts.logger.Error("collection operation failed", "operation", op, "entity", entity, "id", subject, "error", err)
	}

	if action != "" {
		entry := AuditEntry{
			Operation: op,
			Entity:    c.schema.Entity,
			Action:    action,
			EntityID:  subject,
			Status:    AuditStatusSuccess,
			Duration:  duration,
			Timestamp: c.opts.clock.Now(),
			Change:    change,
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		c.opts.audit.Record(ctx, entry)
	}

	c.notify(op, subject, err)
	var abandoned errAbandoned
	if errors.As(err, &abandoned) {
		return fmt.Errorf("%s %s %s: %w", op, entity, subject, abandoned.err)
	}
	return err
}

func (c *Controller[T]) notify(op, subject string, err error) {
	var abandoned errAbandoned
	switch {
	case errors.As(err, &abandoned):
		c.notifier.Notify("Delete Cancelled", fmt.Sprintf("%s %s was not deleted.", c.label, subject), domain.NotificationWarning)
	case err != nil:
		c.notifier.Notify(failureTitle(op), err.Error(), domain.NotificationError)
	default:
		c.notifier.Notify(c.successTitle(op), c.successDetail(op, subject), domain.NotificationSuccess)
	}
}

func failureTitle(op string) string {
	switch op {
	case OpCreate:
		return "Create Failed"
	case OpUpdate:
		return "Update Failed"
	case OpDelete:
		return "Delete Failed"
	default:
		return "Export Failed"
	}
}

func (c *Controller[T]) successTitle(op string) string {
	switch op {
	case OpCreate:
		return c.label + " Created"
	case OpUpdate:
		return c.label + " Updated"
	case OpDelete:
		return c.label + " Deleted"
	default:
		return "Export Complete"
	}
}

func (c *Controller[T]) successDetail(op, subject string) string {
	switch op {
	case OpCreate:
		return fmt.Sprintf("%s has been added.", subject)
	case OpUpdate:
		return fmt.Sprintf("%s has been updated.", subject)
	case OpDelete:
		return fmt.Sprintf("%s has been removed.", subject)
	default:
		return fmt.Sprintf("%s is ready.", subject)
	}
}
