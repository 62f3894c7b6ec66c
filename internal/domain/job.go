package domain

import (
	"encoding/json"
	"time"
)

// JobStatus enumerates generation job lifecycle states.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// GenerationJob tracks one generate request.
type GenerationJob struct {
	ID           int64           `json:"id"`
	CategoryID   int64           `json:"category_id"`
	Status       JobStatus       `json:"status"`
	RequestData  json.RawMessage `json:"request_data,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Category     *Category       `json:"category,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
