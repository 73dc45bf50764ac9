package model

import "time"

// Kind classifies an event for display: icon, color, and whether the
// event expires on its own.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Operation is the mutating action that produced an event.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// EntityType is the kind of resource an event refers to.
type EntityType string

const (
	EntityProject EntityType = "project"
	EntityTask    EntityType = "task"
	EntityTeam    EntityType = "team"
	EntityUser    EntityType = "user"
)

// Event is a single entry in the notification feed, describing the
// outcome of a mutating gateway call.
type Event struct {
	// ID is the unique identifier for this event within the feed.
	ID string `json:"id"`

	// Kind classifies the outcome (success, error, warning, info).
	Kind Kind `json:"kind"`

	// Title is the short human-readable headline.
	Title string `json:"title"`

	// Message is the human-readable detail text.
	Message string `json:"message"`

	// Operation is the action that produced this event.
	Operation Operation `json:"operation"`

	// EntityType is the kind of resource affected.
	EntityType EntityType `json:"entity_type"`

	// EntityID identifies the affected resource. It is empty when the
	// operation failed before an identifier was known (failed create).
	EntityID string `json:"entity_id,omitempty"`

	// CreatedAt is when the event was recorded. Immutable.
	CreatedAt time.Time `json:"created_at"`

	// IsRead indicates whether the user has acknowledged this event.
	// This is the only mutable field.
	IsRead bool `json:"is_read"`
}
