package roles

import "time"

// Role is an organization-owned permission grouping, optionally scoped to
// one team. Capabilities is the permission payload handed to assignments.
type Role struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	TeamID         *int64    `json:"team_id,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Capabilities   []string  `json:"capabilities"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RoleInput carries fields for creating or updating a role.
type RoleInput struct {
	OrganizationID int64
	TeamID         *int64
	Name           string
	Description    string
	Capabilities   []string
}
