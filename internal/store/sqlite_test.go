package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/projecthub/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)

	// A second run must be a no-op, not a duplicate-table error.
	require.NoError(t, s.runMigrations())
}

func TestReplaceAndGetProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	projects := []model.Project{
		{ID: "p1", Name: "Older", Owner: "u1", CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		{ID: "p2", Name: "Newer", Owner: "u1", CreatedAt: now, UpdatedAt: now},
	}

	require.NoError(t, s.ReplaceProjects(ctx, projects))

	got, err := s.GetProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID, "newest first")
	assert.Equal(t, "p1", got[1].ID)
}

func TestReplaceProjectsDropsStaleRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.ReplaceProjects(ctx, []model.Project{
		{ID: "p1", Name: "One", CreatedAt: now, UpdatedAt: now},
		{ID: "p2", Name: "Two", CreatedAt: now, UpdatedAt: now},
	}))

	// Server-side deletion: the next snapshot only contains p2.
	require.NoError(t, s.ReplaceProjects(ctx, []model.Project{
		{ID: "p2", Name: "Two", CreatedAt: now, UpdatedAt: now},
	}))

	got, err := s.GetProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}

func TestReplaceAndGetTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	due := now.Add(48 * time.Hour)
	tasks := []model.Task{
		{
			ID: "t1", Title: "With due date", Project: "p1", AssignedTo: "u1",
			Status: model.StatusTodo, Priority: model.PriorityHigh,
			DueDate: &due, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "t2", Title: "No due date",
			Status: model.StatusCompleted, Priority: model.PriorityLow,
			CreatedAt: now.Add(-time.Minute), UpdatedAt: now,
		},
	}

	require.NoError(t, s.ReplaceTasks(ctx, tasks))

	got, err := s.GetTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	require.NotNil(t, got[0].DueDate)
	assert.Nil(t, got[1].DueDate)
	assert.Equal(t, model.StatusCompleted, got[1].Status)
}

func TestReplaceAndGetUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.ReplaceUsers(ctx, []model.User{
		{ID: "u2", Name: "Zoe", Email: "zoe@example.com", CreatedAt: now},
		{ID: "u1", Name: "Ada", Email: "ada@example.com", CreatedAt: now},
	}))

	got, err := s.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].Name, "sorted by name")
	assert.Equal(t, "Zoe", got[1].Name)
}

func TestGetOnEmptyCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	projects, err := s.GetProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	tasks, err := s.GetTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
