// Package screens binds each admin resource to a collection controller: its
// schema, its seed records and a type-erased Screen used by the CLI.
package screens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"assetdesk/internal/collection"
	"assetdesk/internal/seed"
	"assetdesk/pkg/domain"
)

// Page is one rendered page of a screen.
type Page struct {
	Headers       []string
	Rows          [][]string
	IDs           []string
	Total         int
	Page          int
	TotalPages    int
	PageSize      int
	Query         collection.Query
	Notifications []domain.Notification
}

// Screen drives one controller without exposing its record type. Records
// cross the boundary as JSON objects.
type Screen interface {
	Kind() domain.EntityKind
	Filterable() []string
	Search(text string)
	Filter(field, value string) error
	GoTo(page int)
	Page() Page
	Get(id string) (json.RawMessage, bool)
	Create(ctx context.Context, record json.RawMessage) (string, error)
	Update(ctx context.Context, id string, patch json.RawMessage) error
	RequestDelete(id string) error
	CancelDelete(id string)
	ConfirmDelete(ctx context.Context, id string) error
	Export(ctx context.Context, format collection.Format) (collection.Artifact, error)
	Notifications() []domain.Notification
	Taken() collection.Taken
	Close()
}

type screen[T any] struct {
	c *collection.Controller[T]
}

// Wrap adapts a typed controller to Screen.
func Wrap[T any](c *collection.Controller[T]) Screen {
	return &screen[T]{c: c}
}

func (s *screen[T]) Kind() domain.EntityKind { return s.c.Schema().Entity }

func (s *screen[T]) Filterable() []string {
	fields := s.c.Schema().Filterable
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func (s *screen[T]) Search(text string) { s.c.OnSearch(text) }

func (s *screen[T]) Filter(field, value string) error { return s.c.OnFilter(field, value) }

func (s *screen[T]) GoTo(page int) { s.c.OnPageChange(page) }

func (s *screen[T]) Page() Page {
	schema := s.c.Schema()
	v := s.c.View()
	headers := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		headers[i] = col.Header
	}
	rows := make([][]string, len(v.Items))
	ids := make([]string, len(v.Items))
	for i, rec := range v.Items {
		row := make([]string, len(schema.Columns))
		for j, col := range schema.Columns {
			row[j] = col.Value(rec)
		}
		rows[i] = row
		ids[i] = schema.IdentityOf(rec)
	}
	return Page{
		Headers:       headers,
		Rows:          rows,
		IDs:           ids,
		Total:         v.Total,
		Page:          v.Page,
		TotalPages:    v.TotalPages,
		PageSize:      v.PageSize,
		Query:         v.Query,
		Notifications: v.Notifications,
	}
}

func (s *screen[T]) find(id string) (T, bool) {
	schema := s.c.Schema()
	for _, rec := range s.c.Records() {
		if schema.IdentityOf(rec) == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

func (s *screen[T]) Get(id string) (json.RawMessage, bool) {
	rec, ok := s.find(id)
	if !ok {
		return nil, false
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *screen[T]) Create(ctx context.Context, record json.RawMessage) (string, error) {
	var rec T
	if err := decodeStrict(record, &rec); err != nil {
		return "", s.c.Reject(ctx, collection.OpCreate, "", domain.ValidationError{Entity: s.Kind(), Reason: err.Error()})
	}
	created, err := s.c.OnCreate(ctx, rec)
	if err != nil {
		return "", err
	}
	return s.c.Schema().IdentityOf(created), nil
}

// Update applies patch on top of the stored record, so omitted fields keep
// their current values.
func (s *screen[T]) Update(ctx context.Context, id string, patch json.RawMessage) error {
	rec, ok := s.find(id)
	if !ok {
		_, err := s.c.OnUpdate(ctx, id, rec)
		return err
	}
	if err := decodeStrict(patch, &rec); err != nil {
		return s.c.Reject(ctx, collection.OpUpdate, id, domain.ValidationError{Entity: s.Kind(), Reason: err.Error()})
	}
	_, err := s.c.OnUpdate(ctx, id, rec)
	return err
}

func (s *screen[T]) RequestDelete(id string) error { return s.c.OnDeleteRequested(id) }

func (s *screen[T]) CancelDelete(id string) { s.c.CancelDelete(id) }

func (s *screen[T]) ConfirmDelete(ctx context.Context, id string) error {
	return s.c.OnDeleteConfirmed(ctx, id)
}

func (s *screen[T]) Export(ctx context.Context, format collection.Format) (collection.Artifact, error) {
	return s.c.OnExportFormat(ctx, format)
}

func (s *screen[T]) Notifications() []domain.Notification { return s.c.Notifier().Active() }

func (s *screen[T]) Taken() collection.Taken { return s.c }

func (s *screen[T]) Close() { s.c.Close() }

func decodeStrict(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// Open builds the screen for kind from the records src holds for it.
func Open(ctx context.Context, kind domain.EntityKind, src seed.Source, opts ...collection.Option) (Screen, error) {
	return Env{}.Open(ctx, kind, src, opts...)
}

// Open builds the screen for kind using e's clock and randomness.
func (e Env) Open(ctx context.Context, kind domain.EntityKind, src seed.Source, opts ...collection.Option) (Screen, error) {
	switch kind {
	case domain.EntityAsset:
		return open(ctx, e.AssetSchema(), src, opts)
	case domain.EntityUser:
		return open(ctx, e.UserSchema(), src, opts)
	case domain.EntityBlock:
		return open(ctx, e.BlockSchema(), src, opts)
	case domain.EntityDepartment:
		return open(ctx, e.DepartmentSchema(), src, opts)
	case domain.EntityAllocation:
		return open(ctx, e.AllocationSchema(), src, opts)
	case domain.EntityTransfer:
		return open(ctx, e.TransferSchema(), src, opts)
	case domain.EntityDisposal:
		return open(ctx, e.DisposalSchema(), src, opts)
	case domain.EntityDecommission:
		return open(ctx, e.DecommissionSchema(), src, opts)
	case domain.EntityArchive:
		return open(ctx, e.ArchiveSchema(), src, opts)
	case domain.EntityReport:
		return open(ctx, e.ReportSchema(), src, opts)
	default:
		return nil, fmt.Errorf("unknown resource %q", kind)
	}
}

func open[T any](ctx context.Context, schema collection.Schema[T], src seed.Source, opts []collection.Option) (Screen, error) {
	records, err := seed.Records[T](ctx, src, schema.Entity)
	if err != nil {
		return nil, err
	}
	c, err := collection.New(schema, records, opts...)
	if err != nil {
		return nil, err
	}
	return Wrap(c), nil
}
