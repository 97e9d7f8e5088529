package dto

import "github.com/google/uuid"

// UpdateElementRequest carries a partial change; nil fields are left as-is.
type UpdateElementRequest struct {
	ContentId   uuid.UUID
	SlideNumber int
	ElementId   string

	Content  *string  `json:"content"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Width    *float64 `json:"width"`
	FontSize *int     `json:"font_size"`
	Color    *string  `json:"color"`
	Align    *string  `json:"align"`
}

type AddElementRequest struct {
	ContentId   uuid.UUID
	SlideNumber int

	Type string `json:"type" validate:"omitempty,oneof=title bullet text"`
}

type ElementResponse struct {
	Id          string `json:"id"`
	SlideNumber int    `json:"slide_number"`
}

type FlushResponse struct {
	Id      uuid.UUID `json:"id"`
	Flushed bool      `json:"flushed"`
}
