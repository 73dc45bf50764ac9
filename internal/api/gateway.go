package api

import (
	"context"

	"github.com/nhle/projecthub/internal/model"
)

// Gateway is the remote-API surface the view controllers depend on.
// *Client implements it; tests substitute a fake.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, in ProjectInput) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, in TaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]model.User, error)
	ListTeam(ctx context.Context) ([]model.User, error)
	InviteTeamMember(ctx context.Context, in InviteInput) (*model.User, error)
	RemoveTeamMember(ctx context.Context, id string) error
	ProjectTeam(ctx context.Context, projectID string) ([]model.TeamMemberDetail, error)

	Analytics(ctx context.Context) (*model.Analytics, error)
	DetailedAnalytics(ctx context.Context) (*model.ChartData, error)
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// ProjectInput is the request body for creating or updating a project.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskInput is the request body for creating or updating a task.
type TaskInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status,omitempty"`
	DueDate     *string `json:"dueDate"`
	Project     *string `json:"project"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
}

// InviteInput is the request body for inviting a team member.
type InviteInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login authenticates with email and password and returns the issued
// token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.Post(ctx, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListProjects fetches all projects visible to the current user.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var result struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.Get(ctx, "/projects", &result); err != nil {
		return nil, err
	}
	return result.Projects, nil
}

// CreateProject creates a new project.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*model.Project, error) {
	var result struct {
		Project model.Project `json:"project"`
	}
	if err := c.Post(ctx, "/projects", in, &result); err != nil {
		return nil, err
	}
	return &result.Project, nil
}

// UpdateProject updates an existing project.
func (c *Client) UpdateProject(ctx context.Context, id string, in ProjectInput) (*model.Project, error) {
	var result struct {
		Project model.Project `json:"project"`
	}
	if err := c.Put(ctx, "/projects/"+id, in, &result); err != nil {
		return nil, err
	}
	return &result.Project, nil
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.Delete(ctx, "/projects/"+id, nil)
}

// ListTasks fetches all tasks visible to the current user.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var result struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.Get(ctx, "/tasks", &result); err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*model.Task, error) {
	var result struct {
		Task model.Task `json:"task"`
	}
	if err := c.Post(ctx, "/tasks", in, &result); err != nil {
		return nil, err
	}
	return &result.Task, nil
}

// UpdateTask updates an existing task. Status changes go through the
// same endpoint.
func (c *Client) UpdateTask(ctx context.Context, id string, in TaskInput) (*model.Task, error) {
	var result struct {
		Task model.Task `json:"task"`
	}
	if err := c.Put(ctx, "/tasks/"+id, in, &result); err != nil {
		return nil, err
	}
	return &result.Task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.Delete(ctx, "/tasks/"+id, nil)
}

// ListUsers fetches all users.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var result struct {
		Users []model.User `json:"users"`
	}
	if err := c.Get(ctx, "/users", &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// ListTeam fetches the workspace-wide member roster.
func (c *Client) ListTeam(ctx context.Context) ([]model.User, error) {
	var result []model.User
	if err := c.Get(ctx, "/team", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// InviteTeamMember creates an account for a new member.
func (c *Client) InviteTeamMember(ctx context.Context, in InviteInput) (*model.User, error) {
	var result model.User
	if err := c.Post(ctx, "/team/invite", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveTeamMember removes a membership by id.
func (c *Client) RemoveTeamMember(ctx context.Context, id string) error {
	return c.Delete(ctx, "/team/"+id, nil)
}

// ProjectTeam fetches the memberships of a single project, joined
// with user records.
func (c *Client) ProjectTeam(ctx context.Context, projectID string) ([]model.TeamMemberDetail, error) {
	var result struct {
		TeamMembers []model.TeamMemberDetail `json:"teamMembers"`
	}
	if err := c.Get(ctx, "/team/project/"+projectID, &result); err != nil {
		return nil, err
	}
	return result.TeamMembers, nil
}

// Analytics fetches the overview summary numbers.
func (c *Client) Analytics(ctx context.Context) (*model.Analytics, error) {
	var result model.Analytics
	if err := c.Get(ctx, "/analytics", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DetailedAnalytics fetches the chart breakdowns.
func (c *Client) DetailedAnalytics(ctx context.Context) (*model.ChartData, error) {
	var result model.ChartData
	if err := c.Get(ctx, "/analytics/detailed", &result); err != nil {
		return nil, err
	}
	return &result, nil
}
