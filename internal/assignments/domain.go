package assignments

import "time"

// Assignment links a user to a role within one organization, optionally
// narrowed to a team.
type Assignment struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"`
	RoleID         int64     `json:"role_id"`
	TeamID         *int64    `json:"team_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Target is one entry of the desired assignment set submitted to Sync.
type Target struct {
	RoleID int64  `json:"role_id" validate:"required"`
	TeamID *int64 `json:"team_id"`
}

// Filter narrows assignment listings.
type Filter struct {
	UserID         int64
	OrganizationID int64
	RoleID         int64
	TeamID         int64
}
