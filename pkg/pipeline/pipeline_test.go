package pipeline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/pkg/llm"
	"notebook-studio-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns canned answers in order.
type scriptedProvider struct {
	answers []string
	calls   int
	err     error
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.next()
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.next()
}

func (p *scriptedProvider) next() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if p.calls >= len(p.answers) {
		return "", errors.New("no scripted answer left")
	}
	answer := p.answers[p.calls]
	p.calls++
	return answer, nil
}

func testRequest(contentType entity.ContentType) Request {
	return Request{
		ContentId:  uuid.New(),
		NotebookId: uuid.New(),
		Type:       contentType,
		Title:      "Photosynthesis",
	}
}

func noProgress(string, string, int, int) {}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  \n{\"a\":1}\n ", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}

func TestStructuredPipelineProducesPayload(t *testing.T) {
	provider := &scriptedProvider{answers: []string{
		"```json\n{\"questions\": [{\"question\": \"What is chlorophyll?\"}]}\n```",
	}}
	p := NewStructuredPipeline(provider, "quiz", "questions", "Write a quiz as JSON")

	data, err := p.Run(context.Background(), testRequest(entity.ContentTypeQuiz), noProgress)
	require.NoError(t, err)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Contains(t, payload, "questions")
}

func TestStructuredPipelineRejectsMissingKey(t *testing.T) {
	provider := &scriptedProvider{answers: []string{`{"cards": []}`}}
	p := NewStructuredPipeline(provider, "quiz", "questions", "Write a quiz as JSON")

	_, err := p.Run(context.Background(), testRequest(entity.ContentTypeQuiz), noProgress)
	assert.Error(t, err)
}

func TestStructuredPipelineRejectsInvalidJSON(t *testing.T) {
	provider := &scriptedProvider{answers: []string{"Sure! Here is your quiz: ..."}}
	p := NewStructuredPipeline(provider, "quiz", "questions", "Write a quiz as JSON")

	_, err := p.Run(context.Background(), testRequest(entity.ContentTypeQuiz), noProgress)
	assert.Error(t, err)
}

func TestDocumentPipelineWritesEverySection(t *testing.T) {
	sections := []string{"Overview", "Key Findings", "Analysis", "Conclusion"}
	provider := &scriptedProvider{answers: []string{
		"Overview body", "Findings body", "Analysis body", "Conclusion body",
	}}
	p := NewDocumentPipeline(provider, "report", sections)

	var steps [][2]int
	data, err := p.Run(context.Background(), testRequest(entity.ContentTypeReport),
		func(stage, message string, current, total int) {
			if stage == "section" {
				steps = append(steps, [2]int{current, total})
			}
		})
	require.NoError(t, err)

	var payload struct {
		Format   string `json:"format"`
		Sections []struct {
			Heading string `json:"heading"`
			Body    string `json:"body"`
		} `json:"sections"`
		Markdown string `json:"markdown"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "markdown", payload.Format)
	require.Len(t, payload.Sections, 4)
	assert.Equal(t, "Overview", payload.Sections[0].Heading)
	assert.Contains(t, payload.Markdown, "## Conclusion")

	// One countable progress step per section, in order.
	require.Len(t, steps, 4)
	for i, step := range steps {
		assert.Equal(t, [2]int{i + 1, 4}, step)
	}
}

func TestAudioPipelinePayload(t *testing.T) {
	artifacts, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	provider := &scriptedProvider{answers: []string{
		"Welcome to this overview of photosynthesis. Plants convert light into energy.",
	}}
	p := NewAudioPipeline(provider, artifacts)

	req := testRequest(entity.ContentTypeAudio)
	data, err := p.Run(context.Background(), req, noProgress)
	require.NoError(t, err)

	var payload struct {
		Script          string  `json:"script"`
		AudioPath       string  `json:"audio_path"`
		DurationSeconds float64 `json:"duration_seconds"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.NotEmpty(t, payload.Script)
	assert.Greater(t, payload.DurationSeconds, 0.0)

	wav, err := artifacts.Read(payload.AudioPath)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
}

func TestSilentWavHeader(t *testing.T) {
	wav := silentWav(2)

	require.GreaterOrEqual(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	dataLen := binary.LittleEndian.Uint32(wav[40:44])
	// 2 seconds of 8kHz mono 16-bit samples.
	assert.Equal(t, uint32(2*8000*2), dataLen)
	assert.Equal(t, 44+int(dataLen), len(wav))
}

func TestSlidesPipelineBuildsEditableDeck(t *testing.T) {
	artifacts, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	provider := &scriptedProvider{answers: []string{
		`{"slides": [
			{"title": "Light Reactions", "bullets": ["Chlorophyll absorbs light", "Water is split"]},
			{"title": "Calvin Cycle", "bullets": ["CO2 fixation"]}
		]}`,
	}}
	p := NewSlidesPipeline(provider, artifacts)

	data, err := p.Run(context.Background(), testRequest(entity.ContentTypeImageSlides), noProgress)
	require.NoError(t, err)

	var deck entity.SlideDeck
	require.NoError(t, json.Unmarshal(data, &deck))
	require.Len(t, deck.Slides, 2)

	first := deck.Slides[0]
	assert.Equal(t, 1, first.SlideNumber)
	assert.Equal(t, "Light Reactions", first.Title)
	require.Len(t, first.Elements, 3)
	assert.Equal(t, entity.ElementTypeTitle, first.Elements[0].Type)
	assert.Equal(t, entity.ElementTypeBullet, first.Elements[1].Type)

	// Rendered background exists as a stored artifact.
	img, err := artifacts.Read(first.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(img[0:4]))
}

func TestDefaultElementsLayout(t *testing.T) {
	elements := defaultElements(slideOutline{
		Title:   "Heading",
		Bullets: []string{"a", "b", "c"},
	})

	require.Len(t, elements, 4)
	assert.Equal(t, "el-1", elements[0].Id)
	assert.Equal(t, 32, elements[0].Style.FontSize)

	// Bullets stack downward at a fixed pitch.
	assert.Equal(t, 28.0, elements[1].Y)
	assert.Equal(t, 40.0, elements[2].Y)
	assert.Equal(t, 52.0, elements[3].Y)
}

func TestDefaultRegistryCoversEveryContentType(t *testing.T) {
	artifacts, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)
	r := DefaultRegistry(&scriptedProvider{}, artifacts)

	for _, contentType := range entity.AllContentTypes {
		_, err := r.Resolve(contentType)
		assert.NoError(t, err, "type %s", contentType)
	}
}
