package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"notebook-studio-be/pkg/llm"
)

// StructuredPipeline covers the generation kinds whose payload is one JSON
// object produced by a single model call (quiz, flashcards, mind map, data
// table, dashboard, and friends).
type StructuredPipeline struct {
	provider    llm.LLMProvider
	kind        string
	requiredKey string
	instruction string
}

func NewStructuredPipeline(provider llm.LLMProvider, kind, requiredKey, instruction string) *StructuredPipeline {
	return &StructuredPipeline{
		provider:    provider,
		kind:        kind,
		requiredKey: requiredKey,
		instruction: instruction,
	}
}

func (p *StructuredPipeline) Run(ctx context.Context, req Request, report ProgressFunc) (json.RawMessage, error) {
	report("prompt", fmt.Sprintf("Preparing %s generation", p.kind), 0, 0)

	prompt := fmt.Sprintf(
		"%s\nThe subject is %q (notebook %s).%s\nAnswer with the JSON object only.",
		p.instruction, req.Title, req.NotebookId, optionsHint(req.Options),
	)

	report("generate", fmt.Sprintf("Generating %s", p.kind), 0, 0)
	answer, err := p.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", p.kind, err)
	}

	report("parse", "Validating model output", 0, 0)
	raw := extractJSON(answer)

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON for %s: %w", p.kind, err)
	}
	if _, ok := parsed[p.requiredKey]; !ok {
		return nil, fmt.Errorf("model output for %s is missing %q", p.kind, p.requiredKey)
	}

	return json.RawMessage(raw), nil
}
