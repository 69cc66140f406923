package domain

import (
	"encoding/json"
	"time"
)

// Visibility constants control who can view a resume.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// IsValidVisibility checks whether the given visibility string is recognized.
func IsValidVisibility(visibility string) bool {
	return visibility == VisibilityPrivate || visibility == VisibilityPublic
}

// Resume represents a single resume document owned by a user. The document
// body is stored as an opaque JSON payload and is not interpreted by the
// server beyond persistence.
type Resume struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	Visibility string          `json:"visibility"`
	Locked     bool            `json:"locked"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsPublic reports whether the resume can be viewed without authentication.
func (r *Resume) IsPublic() bool {
	return r.Visibility == VisibilityPublic
}

// Statistics tracks view and download counters for a resume.
type Statistics struct {
	ID        string    `json:"-"`
	ResumeID  string    `json:"-"`
	Views     int64     `json:"views"`
	Downloads int64     `json:"downloads"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
