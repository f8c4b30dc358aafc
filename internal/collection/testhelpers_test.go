package collection

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"assetdesk/pkg/domain"
)

type item struct {
	ID         string
	Name       string
	Category   string
	Department string
	Cost       string
}

func itemSchema() Schema[item] {
	return Schema[item]{
		Entity:         domain.EntityAsset,
		IdentityOf:     func(r item) string { return r.ID },
		AssignIdentity: func(r *item, id string) { r.ID = id },
		Policy:         RandomPolicy{Prefix: "AST", Digits: 3},
		Searchable: []Field[item]{
			{Name: "name", Get: func(r item) string { return r.Name }},
			{Name: "id", Get: func(r item) string { return r.ID }},
		},
		Filterable: []Field[item]{
			{Name: "category", Get: func(r item) string { return r.Category }},
			{Name: "department", Get: func(r item) string { return r.Department }},
		},
		Columns: []Column[item]{
			{Header: "ID", Kind: Text, Value: func(r item) string { return r.ID }},
			{Header: "Name", Kind: Text, Value: func(r item) string { return r.Name }},
			{Header: "Category", Kind: Enum, Value: func(r item) string { return r.Category }},
			{Header: "Cost", Kind: Number, Value: func(r item) string { return r.Cost }},
		},
		Validate: func(r item) error {
			if r.Name == "" {
				return domain.ValidationError{Entity: domain.EntityAsset, Field: "name", Reason: "required"}
			}
			return nil
		},
	}
}

func numberedItems(n int) []item {
	out := make([]item, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, item{ID: fmt.Sprintf("AST-%03d", i), Name: fmt.Sprintf("Laptop %d", i), Category: "Laptop", Department: "Engineering", Cost: "1200"})
	}
	return out
}

func newTestController(t *testing.T, seed []item, opts ...Option) *Controller[item] {
	t.Helper()
	base := []Option{WithDeleteDelay(0), WithClock(fixedClock(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)))}
	c, err := New(itemSchema(), seed, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func fixedClock(ts time.Time) Clock {
	return ClockFunc(func() time.Time { return ts })
}

type takenSet map[string]struct{}

func newTaken(ids ...string) takenSet {
	s := takenSet{}
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s takenSet) Has(id string) bool { _, ok := s[id]; return ok }

func (s takenSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// sequenceRand replays values, repeating the last one once exhausted.
func sequenceRand(values ...int) RandomSource {
	var i int
	return func(n int) int {
		v := values[min(i, len(values)-1)]
		i++
		return v % n
	}
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

type fakeAfter struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (f *fakeAfter) after(_ time.Duration, fn func()) timerHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// fireAll runs every timer callback, including stopped ones, to model an
// expiry racing with dismissal.
func (f *fakeAfter) fireAll() {
	f.mu.Lock()
	timers := append([]*fakeTimer(nil), f.timers...)
	f.mu.Unlock()
	for _, t := range timers {
		t.fn()
	}
}

type captureAuditRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.Operation == op && e.Status == status {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type logEntry struct {
	level string
	msg   string
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.add("error", msg) }

func (l *captureLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func kindsOf(notes []domain.Notification) []domain.NotificationKind {
	out := make([]domain.NotificationKind, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Kind)
	}
	return out
}
