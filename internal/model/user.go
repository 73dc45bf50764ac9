package model

import "time"

// User is a registered account on the server.
type User struct {
	ID        string    `json:"_id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Role is only populated by the team roster endpoint.
	Role string `json:"role,omitempty" db:"-"`
}
