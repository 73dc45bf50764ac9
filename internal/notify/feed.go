package notify

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nhle/projecthub/internal/model"
)

// DefaultExpiry is how long a success event stays in the feed before
// it is removed automatically.
const DefaultExpiry = 5 * time.Second

// Input is what a view controller supplies when recording an outcome.
// Id and timestamp are generated by the feed.
type Input struct {
	Kind       model.Kind
	Title      string
	Message    string
	Operation  model.Operation
	EntityType model.EntityType

	// EntityID may be empty when the operation failed before an
	// identifier was assigned (e.g. a failed create).
	EntityID string
}

// ChangedMsg is sent to the UI whenever the feed's contents or read
// state change.
type ChangedMsg struct{}

// Feed is the process-wide, in-memory log of outcome events. It is
// constructed once at startup and handed to every view controller;
// it holds no durable state and does not survive a restart.
//
// All operations are total: stale ids are silent no-ops and nothing
// here ever returns an error.
type Feed struct {
	mu     sync.Mutex
	events []model.Event
	expiry time.Duration

	// changeCh wakes the display surface after any mutation. Sends
	// never block; a full channel means a redraw is already pending.
	changeCh chan struct{}
}

// New creates a feed with the default success expiry.
func New() *Feed {
	return NewWithExpiry(DefaultExpiry)
}

// NewWithExpiry creates a feed whose success events are removed after
// the given delay. Used by tests to avoid multi-second sleeps.
func NewWithExpiry(expiry time.Duration) *Feed {
	return &Feed{
		expiry:   expiry,
		changeCh: make(chan struct{}, 16),
	}
}

// Record creates an event from the input and prepends it to the feed,
// so Events()[0] is always the newest entry. Success events schedule
// their own removal after the expiry delay; the timer is never
// cancelled and its callback degrades to a no-op if the event is
// already gone.
func (f *Feed) Record(in Input) model.Event {
	e := model.Event{
		ID:         uuid.New().String(),
		Kind:       in.Kind,
		Title:      in.Title,
		Message:    in.Message,
		Operation:  in.Operation,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		CreatedAt:  time.Now(),
	}

	f.mu.Lock()
	f.events = append([]model.Event{e}, f.events...)
	f.mu.Unlock()

	if e.Kind == model.KindSuccess {
		id := e.ID
		time.AfterFunc(f.expiry, func() {
			f.Remove(id)
		})
	}

	f.notifyChange()
	return e
}

// MarkRead marks the event with the given id as read. Unknown ids are
// ignored.
func (f *Feed) MarkRead(id string) {
	f.mu.Lock()
	changed := false
	for i := range f.events {
		if f.events[i].ID == id && !f.events[i].IsRead {
			f.events[i].IsRead = true
			changed = true
			break
		}
	}
	f.mu.Unlock()

	if changed {
		f.notifyChange()
	}
}

// MarkAllRead marks every event currently in the feed as read.
func (f *Feed) MarkAllRead() {
	f.mu.Lock()
	changed := false
	for i := range f.events {
		if !f.events[i].IsRead {
			f.events[i].IsRead = true
			changed = true
		}
	}
	f.mu.Unlock()

	if changed {
		f.notifyChange()
	}
}

// Remove deletes the event with the given id. It covers both
// user-triggered removal and expiry, so removing an id that is no
// longer present is a no-op rather than an error.
func (f *Feed) Remove(id string) {
	f.mu.Lock()
	changed := false
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			changed = true
			break
		}
	}
	f.mu.Unlock()

	if changed {
		f.notifyChange()
	}
}

// ClearAll empties the feed. Expiry timers still pending for cleared
// events fire into nothing.
func (f *Feed) ClearAll() {
	f.mu.Lock()
	changed := len(f.events) > 0
	f.events = nil
	f.mu.Unlock()

	if changed {
		f.notifyChange()
	}
}

// Events returns a copy of the feed, most recent first.
func (f *Feed) Events() []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.Event, len(f.events))
	copy(out, f.events)
	return out
}

// UnreadCount returns the number of events not yet marked read.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for i := range f.events {
		if !f.events[i].IsRead {
			n++
		}
	}
	return n
}

// Len returns the number of events currently in the feed.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// WaitForChange returns a tea.Cmd that blocks until the feed changes.
// The UI re-issues it after every ChangedMsg to keep listening, the
// same way sync results are subscribed to.
func (f *Feed) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		<-f.changeCh
		return ChangedMsg{}
	}
}

// notifyChange signals the change channel without blocking.
func (f *Feed) notifyChange() {
	select {
	case f.changeCh <- struct{}{}:
	default:
	}
}
