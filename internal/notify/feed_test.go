package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/projecthub/internal/model"
)

// longExpiry keeps success events from expiring mid-test.
const longExpiry = time.Hour

func errorInput(title string) Input {
	return Input{
		Kind:       model.KindError,
		Title:      title,
		Message:    "something went wrong",
		Operation:  model.OperationCreate,
		EntityType: model.EntityProject,
	}
}

func TestRecordPrependsNewestFirst(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	first := f.Record(errorInput("first"))
	second := f.Record(errorInput("second"))
	third := f.Record(errorInput("third"))

	events := f.Events()
	require.Len(t, events, 3)
	assert.Equal(t, third.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)
	assert.Equal(t, first.ID, events[2].ID)
}

func TestRecordAssignsUniqueIDs(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		e := f.Record(errorInput("event"))
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestRecordStartsUnread(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	e := f.Record(errorInput("new"))

	assert.False(t, e.IsRead)
	assert.Equal(t, 1, f.UnreadCount())
}

func TestMarkRead(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	a := f.Record(errorInput("a"))
	f.Record(errorInput("b"))

	f.MarkRead(a.ID)

	assert.Equal(t, 1, f.UnreadCount())
	for _, e := range f.Events() {
		if e.ID == a.ID {
			assert.True(t, e.IsRead)
		} else {
			assert.False(t, e.IsRead)
		}
	}
}

func TestMarkReadUnknownIDIsNoOp(t *testing.T) {
	f := NewWithExpiry(longExpiry)
	f.Record(errorInput("a"))

	f.MarkRead("no-such-id")

	assert.Equal(t, 1, f.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	f := NewWithExpiry(longExpiry)
	for i := 0; i < 4; i++ {
		f.Record(errorInput("event"))
	}

	f.MarkAllRead()

	assert.Equal(t, 0, f.UnreadCount())
	assert.Equal(t, 4, f.Len())
}

func TestRemove(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	a := f.Record(errorInput("a"))
	b := f.Record(errorInput("b"))

	f.Remove(a.ID)

	events := f.Events()
	require.Len(t, events, 1)
	assert.Equal(t, b.ID, events[0].ID)
}

func TestRemoveIsIdempotent(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	a := f.Record(errorInput("a"))
	f.Record(errorInput("b"))

	f.Remove(a.ID)
	f.Remove(a.ID)
	f.Remove("never-existed")

	assert.Equal(t, 1, f.Len())
}

func TestClearAll(t *testing.T) {
	f := NewWithExpiry(longExpiry)
	for i := 0; i < 3; i++ {
		f.Record(errorInput("event"))
	}

	f.ClearAll()

	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 0, f.UnreadCount())
}

func TestSuccessEventExpires(t *testing.T) {
	f := NewWithExpiry(20 * time.Millisecond)

	e := f.Record(Input{
		Kind:       model.KindSuccess,
		Title:      "Project Created",
		Message:    `Project "demo" has been created successfully`,
		Operation:  model.OperationCreate,
		EntityType: model.EntityProject,
		EntityID:   "p1",
	})

	require.Equal(t, 1, f.Len())

	assert.Eventually(t, func() bool {
		return f.Len() == 0
	}, time.Second, 5*time.Millisecond, "success event %s should expire", e.ID)
}

func TestErrorEventDoesNotExpire(t *testing.T) {
	f := NewWithExpiry(20 * time.Millisecond)

	f.Record(errorInput("persistent"))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, f.Len())
}

func TestWarningEventDoesNotExpire(t *testing.T) {
	f := NewWithExpiry(20 * time.Millisecond)

	f.Record(Input{
		Kind:       model.KindWarning,
		Title:      "Project Deleted",
		Message:    `Project "demo" has been deleted`,
		Operation:  model.OperationDelete,
		EntityType: model.EntityProject,
		EntityID:   "p1",
	})

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, f.Len())
}

// A manual removal followed by the expiry timer firing must not
// disturb the rest of the feed.
func TestExpiryAfterManualRemoveIsNoOp(t *testing.T) {
	f := NewWithExpiry(50 * time.Millisecond)

	s := f.Record(Input{
		Kind:       model.KindSuccess,
		Title:      "Task Created",
		Operation:  model.OperationCreate,
		EntityType: model.EntityTask,
		EntityID:   "t1",
	})
	kept := f.Record(errorInput("kept"))

	f.Remove(s.ID)
	require.Equal(t, 1, f.Len())

	time.Sleep(150 * time.Millisecond)

	events := f.Events()
	require.Len(t, events, 1)
	assert.Equal(t, kept.ID, events[0].ID)
}

// Clearing the feed while expiry timers are pending must be final: a
// later timer firing must not resurrect or remove anything.
func TestClearAllWithPendingTimers(t *testing.T) {
	f := NewWithExpiry(50 * time.Millisecond)

	f.Record(Input{Kind: model.KindSuccess, Title: "a", Operation: model.OperationCreate, EntityType: model.EntityTask})
	f.Record(Input{Kind: model.KindSuccess, Title: "b", Operation: model.OperationCreate, EntityType: model.EntityTask})

	f.ClearAll()
	require.Equal(t, 0, f.Len())

	after := f.Record(errorInput("after clear"))

	time.Sleep(150 * time.Millisecond)

	events := f.Events()
	require.Len(t, events, 1)
	assert.Equal(t, after.ID, events[0].ID)
}

// Two commands in flight at once: the one initiated first resolves
// last. The feed must show resolution order, newest resolution on
// top, not initiation order.
func TestInterleavedCommandsAppearInResolutionOrder(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	slowResolved := make(chan model.Event, 1)
	fastResolved := make(chan model.Event, 1)
	release := make(chan struct{})

	// Initiated first; its gateway call drags until released.
	go func() {
		<-release
		slowResolved <- f.Record(errorInput("slow update"))
	}()

	// Initiated second; resolves immediately and unblocks the first.
	go func() {
		fastResolved <- f.Record(errorInput("fast delete"))
		close(release)
	}()

	fast := <-fastResolved
	slow := <-slowResolved

	events := f.Events()
	require.Len(t, events, 2)
	assert.Equal(t, slow.ID, events[0].ID, "last to resolve is newest")
	assert.Equal(t, fast.ID, events[1].ID)
}

func TestWaitForChangeDeliversAfterMutation(t *testing.T) {
	f := NewWithExpiry(longExpiry)

	f.Record(errorInput("wake up"))

	msg := f.WaitForChange()()
	_, ok := msg.(ChangedMsg)
	assert.True(t, ok, "expected ChangedMsg, got %T", msg)
}

// End to end: a burst of mixed outcomes, partial acknowledgement, and
// expiry of the successes only.
func TestFeedScenario(t *testing.T) {
	f := NewWithExpiry(30 * time.Millisecond)

	f.Record(Input{
		Kind:       model.KindSuccess,
		Title:      "Task Created",
		Message:    `Task "Write docs" has been created and assigned successfully`,
		Operation:  model.OperationCreate,
		EntityType: model.EntityTask,
		EntityID:   "t1",
	})
	failed := f.Record(Input{
		Kind:       model.KindError,
		Title:      "Task Creation Failed",
		Message:    "Title is required",
		Operation:  model.OperationCreate,
		EntityType: model.EntityTask,
	})
	deleted := f.Record(Input{
		Kind:       model.KindWarning,
		Title:      "Project Deleted",
		Message:    `Project "Old" has been deleted`,
		Operation:  model.OperationDelete,
		EntityType: model.EntityProject,
		EntityID:   "p9",
	})

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 3, f.UnreadCount())

	// The failed create carries no entity id; the event id still works
	// for acknowledgement.
	assert.Empty(t, failed.EntityID)
	f.MarkRead(failed.ID)
	assert.Equal(t, 2, f.UnreadCount())

	assert.Eventually(t, func() bool {
		return f.Len() == 2
	}, time.Second, 5*time.Millisecond)

	remaining := f.Events()
	require.Len(t, remaining, 2)
	assert.Equal(t, deleted.ID, remaining[0].ID)
	assert.Equal(t, failed.ID, remaining[1].ID)
	assert.Equal(t, 1, f.UnreadCount())
}
