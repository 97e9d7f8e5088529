package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"notebook-studio-be/pkg/llm"
)

// DocumentPipeline produces sectioned markdown documents (reports, white
// papers, literature reviews, competitive analyses). Each section is one model
// call so progress maps 1:1 to countable work.
type DocumentPipeline struct {
	provider llm.LLMProvider
	kind     string
	sections []string
}

func NewDocumentPipeline(provider llm.LLMProvider, kind string, sections []string) *DocumentPipeline {
	return &DocumentPipeline{
		provider: provider,
		kind:     kind,
		sections: sections,
	}
}

type documentSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type documentPayload struct {
	Format   string            `json:"format"`
	Sections []documentSection `json:"sections"`
	Markdown string            `json:"markdown"`
}

func (p *DocumentPipeline) Run(ctx context.Context, req Request, report ProgressFunc) (json.RawMessage, error) {
	report("outline", fmt.Sprintf("Planning %s structure", p.kind), 0, 0)

	sections := make([]documentSection, 0, len(p.sections))
	total := len(p.sections)
	for i, heading := range p.sections {
		report("section", fmt.Sprintf("Writing section %q", heading), i+1, total)

		prompt := fmt.Sprintf(
			"You are writing the %q section of a %s titled %q for notebook %s. Write the section body in markdown, no heading line.%s",
			heading, p.kind, req.Title, req.NotebookId, optionsHint(req.Options),
		)
		body, err := p.provider.Generate(ctx, prompt, llm.WithTemperature(0.4))
		if err != nil {
			return nil, fmt.Errorf("generate section %q: %w", heading, err)
		}
		sections = append(sections, documentSection{
			Heading: heading,
			Body:    strings.TrimSpace(body),
		})
	}

	report("assemble", "Assembling document", 0, 0)

	var sb strings.Builder
	sb.WriteString("# " + req.Title + "\n")
	for _, s := range sections {
		sb.WriteString("\n## " + s.Heading + "\n\n" + s.Body + "\n")
	}

	payload := documentPayload{
		Format:   "markdown",
		Sections: sections,
		Markdown: sb.String(),
	}
	return json.Marshal(payload)
}

func optionsHint(options map[string]interface{}) string {
	if len(options) == 0 {
		return ""
	}
	hint, err := json.Marshal(options)
	if err != nil {
		return ""
	}
	return " Caller options: " + string(hint)
}
