package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SubmitContentRequest struct {
	NotebookId uuid.UUID              `json:"notebook_id" validate:"required"`
	Type       string                 `json:"type" validate:"required"`
	Title      string                 `json:"title"`
	Options    map[string]interface{} `json:"options"`
}

type SubmitContentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowContentResponse struct {
	Id         uuid.UUID       `json:"id"`
	NotebookId uuid.UUID       `json:"notebook_id"`
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at"`
}

// ListContentFilter narrows a notebook's content listing. Zero values apply
// no filter.
type ListContentFilter struct {
	Status string
	Type   string
}

type ListContentResponse struct {
	Id        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type RenameContentRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required"`
}

type RenameContentResponse struct {
	Id uuid.UUID `json:"id"`
}

// PublishGenerateContentMessage is the dispatch payload handed from the
// dispatcher to the runner over the in-process bus.
type PublishGenerateContentMessage struct {
	ContentId  uuid.UUID              `json:"content_id"`
	NotebookId uuid.UUID              `json:"notebook_id"`
	Type       string                 `json:"type"`
	Options    map[string]interface{} `json:"options"`
}
