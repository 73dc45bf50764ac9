package store

import (
	"context"

	"github.com/nhle/projecthub/internal/model"
)

// Store is the local read cache for collections fetched from the
// server. It exists so the dashboard can render immediately on
// startup and degrade gracefully offline; the server stays
// authoritative and the cache is only ever written from gateway
// responses. Notification feed state is deliberately not part of it.
type Store interface {
	ReplaceProjects(ctx context.Context, projects []model.Project) error
	GetProjects(ctx context.Context) ([]model.Project, error)

	ReplaceTasks(ctx context.Context, tasks []model.Task) error
	GetTasks(ctx context.Context) ([]model.Task, error)

	ReplaceUsers(ctx context.Context, users []model.User) error
	GetUsers(ctx context.Context) ([]model.User, error)
}
