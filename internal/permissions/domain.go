package permissions

import "time"

// Permission is an organization-owned grant document: a named capability
// set handed out to roles.
type Permission struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Actions        []string  `json:"actions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PermissionItem is one entry of a bulk replacement list. A non-zero ID
// requests an update of the existing grant; a zero ID requests a create.
// Any organization id carried by the item is ignored: the parent context's
// organization always wins.
type PermissionItem struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}
