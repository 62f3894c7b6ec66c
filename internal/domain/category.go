package domain

import "time"

// Category groups templates generated for the same business theme.
type Category struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Details        string     `json:"details,omitempty"`
	TemplatesCount int        `json:"templates_count"`
	Templates      []Template `json:"templates,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
