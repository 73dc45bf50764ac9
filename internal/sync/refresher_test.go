package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	gosync "sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/projecthub/internal/api"
	"github.com/nhle/projecthub/internal/model"
)

// fakeGateway serves canned collections, or a single error for all of
// them. Guarded because the refresher fetches from its own goroutine.
type fakeGateway struct {
	mu       gosync.Mutex
	projects []model.Project
	tasks    []model.Task
	users    []model.User
	err      error
}

func (g *fakeGateway) setProjects(projects []model.Project) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.projects = projects
}

func (g *fakeGateway) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *fakeGateway) ListProjects(context.Context) ([]model.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.projects, g.err
}

func (g *fakeGateway) ListTasks(context.Context) ([]model.Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tasks, g.err
}

func (g *fakeGateway) ListUsers(context.Context) ([]model.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.users, g.err
}

func (g *fakeGateway) Login(context.Context, string, string) (*api.LoginResult, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) CreateProject(context.Context, api.ProjectInput) (*model.Project, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) UpdateProject(context.Context, string, api.ProjectInput) (*model.Project, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) DeleteProject(context.Context, string) error {
	return errors.New("not implemented")
}
func (g *fakeGateway) CreateTask(context.Context, api.TaskInput) (*model.Task, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) UpdateTask(context.Context, string, api.TaskInput) (*model.Task, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) DeleteTask(context.Context, string) error {
	return errors.New("not implemented")
}
func (g *fakeGateway) ListTeam(context.Context) ([]model.User, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) InviteTeamMember(context.Context, api.InviteInput) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) RemoveTeamMember(context.Context, string) error {
	return errors.New("not implemented")
}
func (g *fakeGateway) ProjectTeam(context.Context, string) ([]model.TeamMemberDetail, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) Analytics(context.Context) (*model.Analytics, error) {
	return nil, errors.New("not implemented")
}
func (g *fakeGateway) DetailedAnalytics(context.Context) (*model.ChartData, error) {
	return nil, errors.New("not implemented")
}

// memStore is an in-memory Store for tests.
type memStore struct {
	mu       gosync.Mutex
	projects []model.Project
	tasks    []model.Task
	users    []model.User
}

func (s *memStore) ReplaceProjects(_ context.Context, projects []model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
	return nil
}

func (s *memStore) GetProjects(context.Context) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects, nil
}

func (s *memStore) ReplaceTasks(_ context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	return nil
}

func (s *memStore) GetTasks(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks, nil
}

func (s *memStore) ReplaceUsers(_ context.Context, users []model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	return nil
}

func (s *memStore) GetUsers(context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func nextResult(t *testing.T, cmd func() interface{}) RefreshResultMsg {
	t.Helper()

	resultCh := make(chan RefreshResultMsg, 1)
	go func() {
		if msg, ok := cmd().(RefreshResultMsg); ok {
			resultCh <- msg
		}
	}()

	select {
	case msg := <-resultCh:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh result")
		return RefreshResultMsg{}
	}
}

func TestInitialFetchCachesAndReports(t *testing.T) {
	gw := &fakeGateway{
		projects: []model.Project{{ID: "p1", Name: "Demo"}},
		tasks:    []model.Task{{ID: "t1", Title: "Write"}},
		users:    []model.User{{ID: "u1", Name: "Ada"}},
	}
	cache := &memStore{}

	r := New(gw, cache, time.Hour, quietLogger())
	defer r.Stop()

	cmd := r.Start()
	msg := nextResult(t, func() interface{} { return cmd() })

	require.NoError(t, msg.Err)
	assert.Len(t, msg.Projects, 1)
	assert.Len(t, msg.Tasks, 1)
	assert.Len(t, msg.Users, 1)

	cached, err := cache.GetProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", cached[0].ID)

	state, lastSync := r.State()
	assert.Equal(t, RefreshIdle, state)
	assert.False(t, lastSync.IsZero())
}

func TestManualRefreshTriggersFetch(t *testing.T) {
	gw := &fakeGateway{projects: []model.Project{{ID: "p1"}}}
	cache := &memStore{}

	r := New(gw, cache, time.Hour, quietLogger())
	defer r.Stop()

	cmd := r.Start()
	nextResult(t, func() interface{} { return cmd() })

	gw.setProjects([]model.Project{{ID: "p1"}, {ID: "p2"}})
	r.Refresh()

	msg := nextResult(t, func() interface{} { return r.WaitForNextResult()() })
	require.NoError(t, msg.Err)
	assert.Len(t, msg.Projects, 2)
}

func TestFetchErrorIsReported(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("server down")}
	cache := &memStore{}

	r := New(gw, cache, time.Hour, quietLogger())
	defer r.Stop()

	cmd := r.Start()
	msg := nextResult(t, func() interface{} { return cmd() })

	require.Error(t, msg.Err)
	assert.False(t, msg.Unauthorized)

	state, _ := r.State()
	assert.Equal(t, RefreshError, state)
}

func TestUnauthorizedIsFlagged(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("GET /projects: %w", api.ErrUnauthorized)}
	cache := &memStore{}

	r := New(gw, cache, time.Hour, quietLogger())
	defer r.Stop()

	cmd := r.Start()
	msg := nextResult(t, func() interface{} { return cmd() })

	require.Error(t, msg.Err)
	assert.True(t, msg.Unauthorized)
}

func TestStopIsIdempotent(t *testing.T) {
	r := New(&fakeGateway{}, &memStore{}, time.Hour, quietLogger())
	r.Start()

	r.Stop()
	r.Stop()
}

// A session expiring and being re-established must not surface auth
// failures queued from the old credential: after Stop, fast polling
// piles Unauthorized results into the buffer with no listener, and a
// restart has to begin from a clean slate.
func TestRestartAfterUnauthorizedStartsClean(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("GET /projects: %w", api.ErrUnauthorized)}
	cache := &memStore{}

	r := New(gw, cache, 10*time.Millisecond, quietLogger())
	defer r.Stop()

	cmd := r.Start()
	msg := nextResult(t, func() interface{} { return cmd() })
	require.True(t, msg.Unauthorized)

	// The credential is invalidated; polling stops. Give any cycle
	// already in flight time to land in the buffer.
	r.Stop()
	time.Sleep(150 * time.Millisecond)

	// User signs back in against a healthy server.
	gw.setErr(nil)
	gw.setProjects([]model.Project{{ID: "p1"}})

	cmd = r.Start()
	msg = nextResult(t, func() interface{} { return cmd() })

	require.NoError(t, msg.Err)
	assert.False(t, msg.Unauthorized, "queued results from the old session must not leak into the new one")
	assert.Len(t, msg.Projects, 1)
}

// Stop must actually halt polling so a stopped refresher does not
// keep hitting the gateway.
func TestStopHaltsPolling(t *testing.T) {
	gw := &fakeGateway{projects: []model.Project{{ID: "p1"}}}
	cache := &memStore{}

	r := New(gw, cache, 10*time.Millisecond, quietLogger())
	cmd := r.Start()
	nextResult(t, func() interface{} { return cmd() })

	r.Stop()
	time.Sleep(50 * time.Millisecond)

	gw.setProjects(nil)
	cache.ReplaceProjects(context.Background(), []model.Project{{ID: "sentinel"}})
	time.Sleep(50 * time.Millisecond)

	cached, err := cache.GetProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "sentinel", cached[0].ID, "a stopped refresher must not overwrite the cache")
}
