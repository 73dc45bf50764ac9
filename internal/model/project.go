package model

import "time"

// Project is a container that groups tasks and team members.
type Project struct {
	ID          string    `json:"_id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Owner       string    `json:"owner" db:"owner"`
	TeamMembers []string  `json:"teamMembers,omitempty" db:"-"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
