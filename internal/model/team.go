package model

import "time"

// Team membership roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// TeamMember links a user to a project with a role.
type TeamMember struct {
	ID       string    `json:"_id" db:"id"`
	User     string    `json:"user" db:"user_id"`
	Project  string    `json:"project" db:"project_id"`
	Role     string    `json:"role" db:"role"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}

// TeamMemberDetail is a membership joined with its user record, as
// returned by the per-project team endpoint.
type TeamMemberDetail struct {
	TeamMember
	UserInfo User `json:"userInfo"`
}
