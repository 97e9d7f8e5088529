package dto

import "github.com/google/uuid"

// ProgressEvent is one step notification for a running job. Current/Total are
// zero when the stage is not countable.
type ProgressEvent struct {
	Id      uuid.UUID `json:"id"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
}

// CompletionEvent is the single terminal notification for a job.
type CompletionEvent struct {
	Id      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}
