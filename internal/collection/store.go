package collection

import (
	"fmt"
	"sync"
	"time"

	"assetdesk/pkg/domain"
)

type storeState[T any] struct {
	records []T
	index   map[string]int
}

func (s storeState[T]) clone() storeState[T] {
	out := storeState[T]{
		records: make([]T, len(s.records)),
		index:   make(map[string]int, len(s.index)),
	}
	copy(out.records, s.records)
	for k, v := range s.index {
		out.index[k] = v
	}
	return out
}

func (s *storeState[T]) reindex(identity func(T) string) {
	s.index = make(map[string]int, len(s.records))
	for i, rec := range s.records {
		s.index[identity(rec)] = i
	}
}

// Store is the ordered, identity-keyed record collection behind a controller.
// Mutations run against a copy of the state that is committed only when the
// whole unit of work succeeds.
type Store[T any] struct {
	mu       sync.RWMutex
	entity   domain.EntityKind
	identity func(T) string
	assign   func(*T, string)
	state    storeState[T]
	nowFn    func() time.Time
}

// NewStore constructs an empty store for entity.
func NewStore[T any](entity domain.EntityKind, identity func(T) string, assign func(*T, string)) *Store[T] {
	return &Store[T]{
		entity:   entity,
		identity: identity,
		assign:   assign,
		state:    storeState[T]{index: map[string]int{}},
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// Has reports whether id is present.
func (s *Store[T]) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.state.index[id]
	return ok
}

// IDs returns every identity in collection order.
func (s *Store[T]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.state.records))
	for _, rec := range s.state.records {
		out = append(out, s.identity(rec))
	}
	return out
}

// Get returns the record stored under id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.state.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.state.records[i], true
}

// List returns a copy of the records in collection order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.state.records))
	copy(out, s.state.records)
	return out
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.records)
}

// Tx is a mutable unit of work over a copy of the store state.
type Tx[T any] struct {
	store   *Store[T]
	state   storeState[T]
	changes []domain.Change
	now     time.Time
}

// RunInTransaction applies fn to a copy of the state and commits it only when
// fn returns nil. The committed changes are returned in application order.
func (s *Store[T]) RunInTransaction(fn func(tx *Tx[T]) error) ([]domain.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx[T]{store: s, state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx.changes, nil
}

// Has reports whether id is present within the transaction.
func (tx *Tx[T]) Has(id string) bool {
	_, ok := tx.state.index[id]
	return ok
}

// Create prepends rec. The identity must not already be present.
func (tx *Tx[T]) Create(rec T) (T, error) {
	id := tx.store.identity(rec)
	if id == "" {
		return rec, domain.ErrIdentityRequired
	}
	if tx.Has(id) {
		return rec, domain.ErrIdentityConflict{Entity: tx.store.entity, ID: id}
	}
	after, err := domain.NewChangePayloadFromValue(rec)
	if err != nil {
		return rec, fmt.Errorf("snapshot %s %s: %w", tx.store.entity, id, err)
	}
	records := make([]T, 0, len(tx.state.records)+1)
	records = append(records, rec)
	records = append(records, tx.state.records...)
	tx.state.records = records
	tx.state.reindex(tx.store.identity)
	tx.record(domain.Change{Entity: tx.store.entity, Action: domain.ActionCreate, ID: id, After: after})
	return rec, nil
}

// Update replaces the record stored under id in place. The replacement keeps
// id as its identity whatever it carried.
func (tx *Tx[T]) Update(id string, rec T) (T, error) {
	i, ok := tx.state.index[id]
	if !ok {
		return rec, domain.ErrNotFound{Entity: tx.store.entity, ID: id}
	}
	tx.store.assign(&rec, id)
	before, err := domain.NewChangePayloadFromValue(tx.state.records[i])
	if err != nil {
		return rec, fmt.Errorf("snapshot %s %s: %w", tx.store.entity, id, err)
	}
	after, err := domain.NewChangePayloadFromValue(rec)
	if err != nil {
		return rec, fmt.Errorf("snapshot %s %s: %w", tx.store.entity, id, err)
	}
	tx.state.records[i] = rec
	tx.record(domain.Change{Entity: tx.store.entity, Action: domain.ActionUpdate, ID: id, Before: before, After: after})
	return rec, nil
}

// Remove deletes exactly the record stored under id.
func (tx *Tx[T]) Remove(id string) (T, error) {
	i, ok := tx.state.index[id]
	if !ok {
		var zero T
		return zero, domain.ErrNotFound{Entity: tx.store.entity, ID: id}
	}
	removed := tx.state.records[i]
	before, err := domain.NewChangePayloadFromValue(removed)
	if err != nil {
		return removed, fmt.Errorf("snapshot %s %s: %w", tx.store.entity, id, err)
	}
	tx.state.records = append(tx.state.records[:i], tx.state.records[i+1:]...)
	tx.state.reindex(tx.store.identity)
	tx.record(domain.Change{Entity: tx.store.entity, Action: domain.ActionDelete, ID: id, Before: before})
	return removed, nil
}

func (tx *Tx[T]) record(change domain.Change) {
	change.OccurredAt = tx.now
	tx.changes = append(tx.changes, change)
}

// Create prepends rec in its own transaction.
func (s *Store[T]) Create(rec T) (T, domain.Change, error) {
	var created T
	changes, err := s.RunInTransaction(func(tx *Tx[T]) error {
		var err error
		created, err = tx.Create(rec)
		return err
	})
	if err != nil {
		return rec, domain.Change{}, err
	}
	return created, changes[0], nil
}

// Update replaces the record under id in its own transaction.
func (s *Store[T]) Update(id string, rec T) (T, domain.Change, error) {
	var updated T
	changes, err := s.RunInTransaction(func(tx *Tx[T]) error {
		var err error
		updated, err = tx.Update(id, rec)
		return err
	})
	if err != nil {
		return rec, domain.Change{}, err
	}
	return updated, changes[0], nil
}

// Remove deletes the record under id in its own transaction. Removing a
// missing identity leaves the store unchanged and returns ErrNotFound.
func (s *Store[T]) Remove(id string) (T, domain.Change, error) {
	var removed T
	changes, err := s.RunInTransaction(func(tx *Tx[T]) error {
		var err error
		removed, err = tx.Remove(id)
		return err
	})
	if err != nil {
		return removed, domain.Change{}, err
	}
	return removed, changes[0], nil
}

// load replaces the contents of the store with recs in their given order. It
// is only used to seed a store before any mutation.
func (s *Store[T]) load(recs []T) error {
	state := storeState[T]{records: make([]T, 0, len(recs))}
	seen := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		id := s.identity(rec)
		if id == "" {
			return domain.ErrIdentityRequired
		}
		if _, dup := seen[id]; dup {
			return domain.ErrIdentityConflict{Entity: s.entity, ID: id}
		}
		seen[id] = struct{}{}
		state.records = append(state.records, rec)
	}
	state.reindex(s.identity)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}
