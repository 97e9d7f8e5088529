package pipeline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"notebook-studio-be/pkg/llm"
	"notebook-studio-be/pkg/storage"
)

// AudioPipeline writes a two-host overview script with the model and renders
// it to an audio artifact. Synthesis is a silent placeholder track sized to
// the script until a TTS provider is plugged in behind the same seam.
type AudioPipeline struct {
	provider  llm.LLMProvider
	artifacts *storage.ArtifactStore
}

func NewAudioPipeline(provider llm.LLMProvider, artifacts *storage.ArtifactStore) *AudioPipeline {
	return &AudioPipeline{
		provider:  provider,
		artifacts: artifacts,
	}
}

type audioPayload struct {
	Script          string  `json:"script"`
	AudioPath       string  `json:"audio_path"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (p *AudioPipeline) Run(ctx context.Context, req Request, report ProgressFunc) (json.RawMessage, error) {
	report("script", "Writing overview script", 1, 2)

	prompt := fmt.Sprintf(
		"Write a conversational two-host audio overview script about %q (notebook %s). Alternate speakers as 'Host A:' and 'Host B:'.%s",
		req.Title, req.NotebookId, optionsHint(req.Options),
	)
	script, err := p.provider.Generate(ctx, prompt, llm.WithTemperature(0.8))
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	script = strings.TrimSpace(script)

	report("synthesize", "Rendering audio track", 2, 2)

	// Rough speaking rate of 2.5 words per second.
	words := len(strings.Fields(script))
	duration := float64(words) / 2.5
	if duration < 1 {
		duration = 1
	}

	wav := silentWav(duration)
	path, err := p.artifacts.Write(req.ContentId, "overview.wav", wav)
	if err != nil {
		return nil, fmt.Errorf("store audio artifact: %w", err)
	}

	payload := audioPayload{
		Script:          script,
		AudioPath:       path,
		DurationSeconds: duration,
	}
	return json.Marshal(payload)
}

// silentWav renders a mono 16-bit 8kHz PCM file of the given duration.
func silentWav(seconds float64) []byte {
	const sampleRate = 8000
	samples := int(seconds * sampleRate)
	dataLen := samples * 2

	buf := make([]byte, 44+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], sampleRate*2)
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	return buf
}
