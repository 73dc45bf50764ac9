package model

import "time"

// Task status values as the server reports them.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a unit of work within a project.
type Task struct {
	// ID is the server-assigned identifier.
	ID string `json:"_id" db:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title" db:"title"`

	// Description is the full body text.
	Description string `json:"description" db:"description"`

	// Project is the id of the containing project, empty for unfiled tasks.
	Project string `json:"project,omitempty" db:"project_id"`

	// AssignedTo is the id of the assignee, empty when unassigned.
	AssignedTo string `json:"assignedTo,omitempty" db:"assigned_to"`

	// Status is one of the Status* constants.
	Status string `json:"status" db:"status"`

	// Priority is one of the Priority* constants.
	Priority string `json:"priority" db:"priority"`

	// DueDate is when the task is due, nil when no deadline is set.
	DueDate *time.Time `json:"dueDate,omitempty" db:"due_date"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NextStatus returns the status a task cycles to: todo -> in-progress
// -> completed -> todo.
func NextStatus(status string) string {
	switch status {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusTodo
	}
}
