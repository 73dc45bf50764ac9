package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/projecthub/internal/api"
	"github.com/nhle/projecthub/internal/model"
	"github.com/nhle/projecthub/internal/store"
)

// RefreshState represents the current state of the background refresh.
type RefreshState int

const (
	RefreshIdle RefreshState = iota
	RefreshRunning
	RefreshError
)

// RefreshResultMsg is a tea.Msg sent when a refresh cycle completes.
// Refreshes are read-only fetches and therefore never produce feed
// events; they only reconcile the local cache with the server.
type RefreshResultMsg struct {
	Projects []model.Project
	Tasks    []model.Task
	Users    []model.User
	Err      error

	// Unauthorized is set when the server rejected the credential;
	// the root model reacts by invalidating the session.
	Unauthorized bool
}

// fetchTimeout is the maximum time allowed for a single refresh cycle.
const fetchTimeout = 30 * time.Second

// Refresher periodically re-fetches the dashboard collections from
// the gateway and upserts them into the local cache.
type Refresher struct {
	gw       api.Gateway
	cache    store.Store
	interval time.Duration
	log      *logrus.Logger

	resultCh  chan RefreshResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu       gosync.Mutex
	running  bool
	state    RefreshState
	lastSync time.Time
}

// New creates a Refresher polling at the given interval.
func New(gw api.Gateway, cache store.Store, interval time.Duration, log *logrus.Logger) *Refresher {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Refresher{
		gw:        gw,
		cache:     cache,
		interval:  interval,
		log:       log,
		resultCh:  make(chan RefreshResultMsg, 16),
		triggerCh: make(chan struct{}, 16),
	}
}

// Start returns a tea.Cmd that starts the polling goroutine and
// subscribes to results. The returned command waits on the result
// channel and returns RefreshResultMsg messages to the Bubble Tea
// runtime. A stopped Refresher can be started again, e.g. after a
// fresh login.
func (r *Refresher) Start() tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return r.waitForResult()
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	// Results queued while nobody was listening describe a session
	// that no longer exists; drop them so the first message after a
	// restart is never a stale auth failure.
drain:
	for {
		select {
		case <-r.resultCh:
		default:
			break drain
		}
	}

	go r.loop(stopCh)

	return r.waitForResult()
}

// Stop halts the polling goroutine.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	close(r.stopCh)
	r.running = false
}

// Refresh triggers an immediate fetch cycle.
func (r *Refresher) Refresh() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
		// Channel full; a refresh is already queued.
	}
}

// State returns the current refresh state and last successful sync time.
func (r *Refresher) State() (RefreshState, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.lastSync
}

// loop runs the polling cycle until the given stop channel closes.
func (r *Refresher) loop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately.
	r.fetchAndCache()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.fetchAndCache()
		case <-r.triggerCh:
			r.fetchAndCache()
		}
	}
}

// fetchAndCache performs one refresh cycle, updates the cache, and
// sends a RefreshResultMsg on the result channel.
func (r *Refresher) fetchAndCache() {
	r.setState(RefreshRunning)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	projects, err := r.gw.ListProjects(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	tasks, err := r.gw.ListTasks(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	users, err := r.gw.ListUsers(ctx)
	if err != nil {
		r.fail(err)
		return
	}

	if err := r.cache.ReplaceProjects(ctx, projects); err != nil {
		r.log.WithError(err).Warn("caching projects failed")
	}
	if err := r.cache.ReplaceTasks(ctx, tasks); err != nil {
		r.log.WithError(err).Warn("caching tasks failed")
	}
	if err := r.cache.ReplaceUsers(ctx, users); err != nil {
		r.log.WithError(err).Warn("caching users failed")
	}

	r.setState(RefreshIdle)
	r.sendResult(RefreshResultMsg{
		Projects: projects,
		Tasks:    tasks,
		Users:    users,
	})
}

// fail records a refresh error and reports it to the UI.
func (r *Refresher) fail(err error) {
	r.setState(RefreshError)
	r.log.WithError(err).Warn("refresh failed")
	r.sendResult(RefreshResultMsg{
		Err:          err,
		Unauthorized: errors.Is(err, api.ErrUnauthorized),
	})
}

// setState updates the refresh state.
func (r *Refresher) setState(state RefreshState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = state
	if state == RefreshIdle {
		r.lastSync = time.Now()
	}
}

// sendResult sends a RefreshResultMsg on the result channel without blocking.
func (r *Refresher) sendResult(msg RefreshResultMsg) {
	select {
	case r.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the refresher.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (r *Refresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call it after processing a RefreshResultMsg to keep listening.
func (r *Refresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}
