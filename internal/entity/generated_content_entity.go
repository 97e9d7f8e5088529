package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentTypeAudio               ContentType = "audio"
	ContentTypeImageSlides         ContentType = "image-slides"
	ContentTypeReport              ContentType = "report"
	ContentTypeFlashcard           ContentType = "flashcard"
	ContentTypeMindmap             ContentType = "mindmap"
	ContentTypeQuiz                ContentType = "quiz"
	ContentTypeDatatable           ContentType = "datatable"
	ContentTypeInfographic         ContentType = "infographic"
	ContentTypeDashboard           ContentType = "dashboard"
	ContentTypeLiteratureReview    ContentType = "literature-review"
	ContentTypeCompetitiveAnalysis ContentType = "competitive-analysis"
	ContentTypeDiff                ContentType = "diff"
	ContentTypeCitationGraph       ContentType = "citation-graph"
	ContentTypeWhitepaper          ContentType = "whitepaper"
	ContentTypeHTMLPresentation    ContentType = "html-presentation"
	ContentTypeCanvas              ContentType = "canvas"
)

// AllContentTypes is the closed set of generation kinds the dispatcher accepts.
var AllContentTypes = []ContentType{
	ContentTypeAudio,
	ContentTypeImageSlides,
	ContentTypeReport,
	ContentTypeFlashcard,
	ContentTypeMindmap,
	ContentTypeQuiz,
	ContentTypeDatatable,
	ContentTypeInfographic,
	ContentTypeDashboard,
	ContentTypeLiteratureReview,
	ContentTypeCompetitiveAnalysis,
	ContentTypeDiff,
	ContentTypeCitationGraph,
	ContentTypeWhitepaper,
	ContentTypeHTMLPresentation,
	ContentTypeCanvas,
}

func (t ContentType) Valid() bool {
	for _, known := range AllContentTypes {
		if t == known {
			return true
		}
	}
	return false
}

type ContentStatus string

const (
	ContentStatusGenerating ContentStatus = "generating"
	ContentStatusComplete   ContentStatus = "complete"
	ContentStatusFailed     ContentStatus = "failed"
)

func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusGenerating, ContentStatusComplete, ContentStatusFailed:
		return true
	}
	return false
}

// GeneratedContent is the durable unit of work and result. It exists from the
// moment a job is dispatched; Status only moves forward
// (generating -> complete | failed).
type GeneratedContent struct {
	Id         uuid.UUID
	NotebookId uuid.UUID
	Type       ContentType
	Title      string
	Status     ContentStatus
	Data       json.RawMessage
	Error      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
