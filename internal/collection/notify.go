package collection

import (
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	"assetdesk/pkg/domain"
)

// DefaultNotificationTTL is how long a notification stays active.
const DefaultNotificationTTL = 4 * time.Second

type timerHandle interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timerHandle

func realAfter(d time.Duration, f func()) timerHandle {
	return time.AfterFunc(d, f)
}

type notificationEntry struct {
	note  domain.Notification
	timer timerHandle
}

// Notifier holds the active notifications of one controller. Entries expire
// after the TTL unless dismissed first; whichever happens second is a no-op.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	after   afterFunc
	entries []notificationEntry
	closed  bool
}

// NewNotifier constructs a notifier. Non-positive ttl selects the default.
func NewNotifier(ttl time.Duration, clock Clock) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Notifier{ttl: ttl, clock: clock, after: realAfter}
}

// TTL returns the display duration.
func (n *Notifier) TTL() time.Duration { return n.ttl }

// Notify appends a notification and schedules its expiry. A closed notifier
// returns the generated ID without retaining the message.
func (n *Notifier) Notify(title, detail string, kind domain.NotificationKind) string {
	note := domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Detail:    detail,
		Kind:      kind,
		CreatedAt: n.clock.Now(),
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return note.ID
	}
	id := note.ID
	timer := n.after(n.ttl, func() { n.remove(id) })
	n.entries = append(n.entries, notificationEntry{note: note, timer: timer})
	return id
}

// Dismiss removes the notification early and cancels its expiry. It reports
// whether the notification was still active.
func (n *Notifier) Dismiss(id string) bool {
	entry, ok := n.take(id)
	if ok && entry.timer != nil {
		entry.timer.Stop()
	}
	return ok
}

func (n *Notifier) remove(id string) {
	n.take(id)
}

func (n *Notifier) take(id string) (notificationEntry, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, e := range n.entries {
		if e.note.ID == id {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return e, true
		}
	}
	return notificationEntry{}, false
}

// Active returns the live notifications, oldest first.
func (n *Notifier) Active() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Notification, 0, len(n.entries))
	for _, e := range n.entries {
		out = append(out, e.note)
	}
	return out
}

// All yields the notifications active at call time, oldest first.
func (n *Notifier) All() iter.Seq[domain.Notification] {
	snapshot := n.Active()
	return func(yield func(domain.Notification) bool) {
		for _, note := range snapshot {
			if !yield(note) {
				return
			}
		}
	}
}

// Close cancels every pending expiry and drops all notifications.
func (n *Notifier) Close() {
	n.mu.Lock()
	entries := n.entries
	n.entries = nil
	n.closed = true
	n.mu.Unlock()
	for _, e := range entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
}
