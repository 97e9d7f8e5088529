package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"notebook-studio-be/internal/entity"
	"notebook-studio-be/pkg/llm"
	"notebook-studio-be/pkg/storage"
)

// SlidesPipeline builds an image-backed slide deck: the model outlines the
// deck, each slide gets a rendered background artifact, and the text lands in
// positioned overlay elements the user can edit afterwards. The plain Title
// and Bullets mirror is filled at generation time for consumers that do not
// read elements.
type SlidesPipeline struct {
	provider  llm.LLMProvider
	artifacts *storage.ArtifactStore
}

func NewSlidesPipeline(provider llm.LLMProvider, artifacts *storage.ArtifactStore) *SlidesPipeline {
	return &SlidesPipeline{
		provider:  provider,
		artifacts: artifacts,
	}
}

type slideOutline struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

func (p *SlidesPipeline) Run(ctx context.Context, req Request, report ProgressFunc) (json.RawMessage, error) {
	report("outline", "Outlining slide deck", 0, 0)

	prompt := fmt.Sprintf(
		"Outline a slide deck about %q (notebook %s) as JSON: {\"slides\": [{\"title\", \"bullets\": [...]}]}. 4 to 8 slides, at most 4 bullets each.%s\nAnswer with the JSON object only.",
		req.Title, req.NotebookId, optionsHint(req.Options),
	)
	answer, err := p.provider.Generate(ctx, prompt, llm.WithTemperature(0.5))
	if err != nil {
		return nil, fmt.Errorf("outline deck: %w", err)
	}

	var outline struct {
		Slides []slideOutline `json:"slides"`
	}
	if err := json.Unmarshal([]byte(extractJSON(answer)), &outline); err != nil {
		return nil, fmt.Errorf("model returned invalid outline JSON: %w", err)
	}
	if len(outline.Slides) == 0 {
		return nil, fmt.Errorf("model returned an empty deck outline")
	}

	deck := entity.SlideDeck{Slides: make([]entity.Slide, 0, len(outline.Slides))}
	total := len(outline.Slides)
	for i, o := range outline.Slides {
		report("render", fmt.Sprintf("Rendering slide %d of %d", i+1, total), i+1, total)

		imgPath, err := p.renderBackground(req, i+1)
		if err != nil {
			// Keep the partial deck; the runner preserves whatever data existed
			// before a failed stage.
			return nil, fmt.Errorf("render slide %d: %w", i+1, err)
		}

		deck.Slides = append(deck.Slides, entity.Slide{
			SlideNumber: i + 1,
			ImagePath:   imgPath,
			Title:       o.Title,
			Bullets:     o.Bullets,
			Elements:    defaultElements(o),
		})
	}

	return json.Marshal(deck)
}

// defaultElements lays the outline text out as editable overlay regions using
// percentage coordinates.
func defaultElements(o slideOutline) []entity.SlideTextElement {
	elements := []entity.SlideTextElement{
		{
			Id:      "el-1",
			Type:    entity.ElementTypeTitle,
			Content: o.Title,
			X:       5, Y: 8, Width: 90,
			Style: entity.ElementStyle{FontSize: 32, Color: "#1a1a2e", Align: "center"},
		},
	}
	for i, bullet := range o.Bullets {
		elements = append(elements, entity.SlideTextElement{
			Id:      fmt.Sprintf("el-%d", i+2),
			Type:    entity.ElementTypeBullet,
			Content: bullet,
			X:       8, Y: float64(28 + i*12), Width: 84,
			Style: entity.ElementStyle{FontSize: 18, Color: "#1a1a2e", Align: "left"},
		})
	}
	return elements
}

func (p *SlidesPipeline) renderBackground(req Request, slideNumber int) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1280, 720))
	bg := color.RGBA{R: 245, G: 246, B: 250, A: 255}
	for y := 0; y < 720; y++ {
		for x := 0; x < 1280; x++ {
			img.Set(x, y, bg)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return p.artifacts.Write(req.ContentId, fmt.Sprintf("slide-%d.png", slideNumber), buf.Bytes())
}
