package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/pkg/llm"
	"notebook-studio-be/pkg/storage"

	"github.com/google/uuid"
)

// ProgressFunc reports one pipeline step. Current/Total are zero for stages
// that are not countable.
type ProgressFunc func(stage, message string, current, total int)

// Request is the input a pipeline receives for one job.
type Request struct {
	ContentId  uuid.UUID
	NotebookId uuid.UUID
	Type       entity.ContentType
	Title      string
	Options    map[string]interface{}
}

// Pipeline produces the final content payload for one generation kind. A
// pipeline either returns the payload or an error; it never touches the
// content store itself.
type Pipeline interface {
	Run(ctx context.Context, req Request, report ProgressFunc) (json.RawMessage, error)
}

// Registry maps content types to their pipelines.
type Registry struct {
	pipelines map[entity.ContentType]Pipeline
}

func NewRegistry() *Registry {
	return &Registry{
		pipelines: make(map[entity.ContentType]Pipeline),
	}
}

func (r *Registry) Register(t entity.ContentType, p Pipeline) {
	r.pipelines[t] = p
}

func (r *Registry) Resolve(t entity.ContentType) (Pipeline, error) {
	p, ok := r.pipelines[t]
	if !ok {
		return nil, fmt.Errorf("no pipeline registered for type %q", t)
	}
	return p, nil
}

// DefaultRegistry wires every supported generation kind to its pipeline
// family.
func DefaultRegistry(provider llm.LLMProvider, artifacts *storage.ArtifactStore) *Registry {
	r := NewRegistry()

	r.Register(entity.ContentTypeAudio, NewAudioPipeline(provider, artifacts))
	r.Register(entity.ContentTypeImageSlides, NewSlidesPipeline(provider, artifacts))

	r.Register(entity.ContentTypeReport, NewDocumentPipeline(provider, "report",
		[]string{"Overview", "Key Findings", "Analysis", "Conclusion"}))
	r.Register(entity.ContentTypeWhitepaper, NewDocumentPipeline(provider, "whitepaper",
		[]string{"Abstract", "Background", "Approach", "Discussion", "Conclusion"}))
	r.Register(entity.ContentTypeLiteratureReview, NewDocumentPipeline(provider, "literature review",
		[]string{"Scope", "Themes", "Synthesis", "Gaps", "References"}))
	r.Register(entity.ContentTypeCompetitiveAnalysis, NewDocumentPipeline(provider, "competitive analysis",
		[]string{"Landscape", "Competitor Profiles", "Comparison", "Recommendations"}))

	r.Register(entity.ContentTypeQuiz, NewStructuredPipeline(provider, "quiz", "questions",
		"Write a quiz as JSON: {\"questions\": [{\"question\", \"choices\", \"answer\", \"explanation\"}]}"))
	r.Register(entity.ContentTypeFlashcard, NewStructuredPipeline(provider, "flashcard deck", "cards",
		"Write flashcards as JSON: {\"cards\": [{\"front\", \"back\"}]}"))
	r.Register(entity.ContentTypeMindmap, NewStructuredPipeline(provider, "mind map", "root",
		"Write a mind map as JSON: {\"root\": {\"label\", \"children\": [...]}}"))
	r.Register(entity.ContentTypeDatatable, NewStructuredPipeline(provider, "data table", "rows",
		"Write a data table as JSON: {\"columns\": [...], \"rows\": [[...]]}"))
	r.Register(entity.ContentTypeInfographic, NewStructuredPipeline(provider, "infographic", "blocks",
		"Write infographic blocks as JSON: {\"blocks\": [{\"kind\", \"heading\", \"body\", \"value\"}]}"))
	r.Register(entity.ContentTypeDashboard, NewStructuredPipeline(provider, "dashboard", "widgets",
		"Write dashboard widgets as JSON: {\"widgets\": [{\"title\", \"kind\", \"data\"}]}"))
	r.Register(entity.ContentTypeDiff, NewStructuredPipeline(provider, "comparison", "changes",
		"Write a source comparison as JSON: {\"changes\": [{\"topic\", \"left\", \"right\", \"verdict\"}]}"))
	r.Register(entity.ContentTypeCitationGraph, NewStructuredPipeline(provider, "citation graph", "nodes",
		"Write a citation graph as JSON: {\"nodes\": [{\"id\", \"label\"}], \"edges\": [{\"from\", \"to\"}]}"))
	r.Register(entity.ContentTypeHTMLPresentation, NewStructuredPipeline(provider, "web presentation", "sections",
		"Write a web presentation as JSON: {\"sections\": [{\"heading\", \"html\"}]}"))
	r.Register(entity.ContentTypeCanvas, NewStructuredPipeline(provider, "canvas", "nodes",
		"Write a canvas board as JSON: {\"nodes\": [{\"id\", \"label\", \"x\", \"y\"}], \"links\": [...]}"))

	return r
}
