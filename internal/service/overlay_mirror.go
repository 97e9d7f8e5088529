package service

import (
	"html"
	"strings"

	"notebook-studio-be/internal/entity"

	"github.com/microcosm-cc/bluemonday"
)

var mirrorPolicy = bluemonday.StrictPolicy()

// plainText strips markup from rich element content and collapses it to the
// plain string legacy consumers expect.
func plainText(richContent string) string {
	return strings.TrimSpace(html.UnescapeString(mirrorPolicy.Sanitize(richContent)))
}

// syncMirror rebuilds the slide's plain-text title and bullets from its
// elements. The first title element wins; bullets keep element order. Free
// text elements have no mirror representation.
func syncMirror(slide *entity.Slide) {
	slide.Title = ""
	slide.Bullets = nil

	for _, el := range slide.Elements {
		switch el.Type {
		case entity.ElementTypeTitle:
			if slide.Title == "" {
				slide.Title = plainText(el.Content)
			}
		case entity.ElementTypeBullet:
			slide.Bullets = append(slide.Bullets, plainText(el.Content))
		}
	}
}
