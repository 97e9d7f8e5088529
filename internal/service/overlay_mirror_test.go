package service

import (
	"testing"

	"notebook-studio-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain string passes through", in: "Quarterly results", want: "Quarterly results"},
		{name: "tags stripped", in: "<b>Bold</b> and <i>italic</i>", want: "Bold and italic"},
		{name: "entities decoded", in: "Fish &amp; Chips", want: "Fish & Chips"},
		{name: "script removed entirely", in: "<script>alert(1)</script>Safe", want: "Safe"},
		{name: "surrounding whitespace trimmed", in: "  <p> padded </p>  ", want: "padded"},
		{name: "empty input", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}

func TestSyncMirror(t *testing.T) {
	slide := &entity.Slide{
		SlideNumber: 1,
		Elements: []entity.SlideTextElement{
			{Id: "a", Type: entity.ElementTypeBullet, Content: "<em>one</em>"},
			{Id: "b", Type: entity.ElementTypeTitle, Content: "First <b>Title</b>"},
			{Id: "c", Type: entity.ElementTypeText, Content: "free text is not mirrored"},
			{Id: "d", Type: entity.ElementTypeTitle, Content: "Second Title"},
			{Id: "e", Type: entity.ElementTypeBullet, Content: "two"},
		},
	}

	syncMirror(slide)

	assert.Equal(t, "First Title", slide.Title)
	assert.Equal(t, []string{"one", "two"}, slide.Bullets)
}

func TestSyncMirrorEmptySlide(t *testing.T) {
	slide := &entity.Slide{SlideNumber: 3, Title: "stale", Bullets: []string{"stale"}}

	syncMirror(slide)

	assert.Empty(t, slide.Title)
	assert.Empty(t, slide.Bullets)
}
