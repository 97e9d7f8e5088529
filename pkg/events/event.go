package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CONTENT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Content lifecycle event codes consumed by external collaborators.
const (
	TypeContentCompleted = "CONTENT_COMPLETED"
	TypeContentFailed    = "CONTENT_FAILED"
	TypeContentDeleted   = "CONTENT_DELETED"
)

func ContentCompleted(contentId, notebookId uuid.UUID, contentType string) Event {
	return BaseEvent{
		Type: TypeContentCompleted,
		Data: map[string]interface{}{
			"content_id":  contentId.String(),
			"notebook_id": notebookId.String(),
			"type":        contentType,
		},
		OccurredAt: time.Now(),
	}
}

func ContentFailed(contentId, notebookId uuid.UUID, contentType, reason string) Event {
	return BaseEvent{
		Type: TypeContentFailed,
		Data: map[string]interface{}{
			"content_id":  contentId.String(),
			"notebook_id": notebookId.String(),
			"type":        contentType,
			"error":       reason,
		},
		OccurredAt: time.Now(),
	}
}

func ContentDeleted(contentId, notebookId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeContentDeleted,
		Data: map[string]interface{}{
			"content_id":  contentId.String(),
			"notebook_id": notebookId.String(),
		},
		OccurredAt: time.Now(),
	}
}
