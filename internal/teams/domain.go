package teams

import "time"

// Team is a second-level grouping nested under an organization.
type Team struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Member is one roster entry of a team. It carries both the team and the
// owning organization so roster rows stay queryable per tenant.
type Member struct {
	ID             int64     `json:"id"`
	TeamID         int64     `json:"team_id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"`
	Position       string    `json:"position,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MemberItem is one entry of a roster replacement list. Organization and
// team ids are stamped from the parent team, never from the item.
type MemberItem struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id" validate:"required"`
	Position string `json:"position"`
}

// TeamInput carries fields for creating or renaming a team.
type TeamInput struct {
	OrganizationID int64
	Name           string
	Description    string
}
