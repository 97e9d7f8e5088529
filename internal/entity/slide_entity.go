package entity

// Slide payload sub-model for image-slides content. Element coordinates are
// percentages of the container bounding box so layout is resolution
// independent.

type SlideDeck struct {
	Slides []Slide `json:"slides"`
}

type Slide struct {
	SlideNumber int    `json:"slide_number"`
	ImagePath   string `json:"image_path"`

	// Plain-text mirror kept for consumers that predate overlay elements.
	// Derived from Elements, never edited directly.
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`

	Elements []SlideTextElement `json:"elements"`
}

type ElementType string

const (
	ElementTypeTitle  ElementType = "title"
	ElementTypeBullet ElementType = "bullet"
	ElementTypeText   ElementType = "text"
)

type ElementStyle struct {
	FontSize int    `json:"font_size"`
	Color    string `json:"color"`
	Align    string `json:"align"`
}

// SlideTextElement is an independently positioned, styled text region layered
// on a slide image. Content is rich text and is sanitized on render.
type SlideTextElement struct {
	Id      string       `json:"id"`
	Type    ElementType  `json:"type"`
	Content string       `json:"content"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Width   float64      `json:"width"`
	Style   ElementStyle `json:"style"`
}

func (d *SlideDeck) Slide(slideNumber int) *Slide {
	for i := range d.Slides {
		if d.Slides[i].SlideNumber == slideNumber {
			return &d.Slides[i]
		}
	}
	return nil
}
