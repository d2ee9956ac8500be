package songs

import "time"

// Song is an organization-owned library entry.
type Song struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Title          string    `json:"title"`
	Artist         string    `json:"artist,omitempty"`
	Scale          string    `json:"scale,omitempty"`
	Tempo          string    `json:"tempo,omitempty"`
	Chords         string    `json:"chords,omitempty"`
	Rhythm         string    `json:"rhythm,omitempty"`
	Lyrics         string    `json:"lyrics,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SongInput carries fields for creating a song. Timestamps are stamped by
// the repository, never taken from the caller.
type SongInput struct {
	OrganizationID int64
	Title          string
	Artist         string
	Scale          string
	Tempo          string
	Chords         string
	Rhythm         string
	Lyrics         string
}

// SongPatch is a partial update: only non-nil fields are written.
type SongPatch struct {
	Title  *string
	Artist *string
	Scale  *string
	Tempo  *string
	Chords *string
	Rhythm *string
	Lyrics *string
}

// SongFilter narrows listing to one organization with optional search terms.
type SongFilter struct {
	OrganizationID int64
	Title          string
	Artist         string
}
