package annotate

import (
	"context"
	"log"

	"reelscript/config"
	"reelscript/llm"
	"reelscript/types"
)

const appreciationSystemPrompt = `You are a bilingual content analyst. Given an English video transcript,
produce a JSON object with a concise title AND content analysis:

{
  "title": "簡短繁體中文標題 (max 20 chars)",
  "theme": "一句話描述主題 (繁體中文)",
  "keyPoints": ["重點1", "重點2", "重點3"],
  "goldenQuotes": [
    {"en": "Original English quote", "zh": "繁體中文翻譯"},
    {"en": "...", "zh": "..."},
    {"en": "...", "zh": "..."}
  ]
}

Rules:
- title: max 20 characters, 繁體中文, specific not generic
- theme: 1 sentence in 繁體中文, summarizing the core message
- keyPoints: exactly 3 bullet points in 繁體中文
- goldenQuotes: exactly 3 memorable sentences from the original English, with 繁體中文 translation
- Output ONLY valid JSON, no markdown fences or extra text`

// Appreciator generates a title plus study summary (theme, three key
// points, three bilingual quotes) in one provider call over the full
// transcript text.
type Appreciator struct {
	providers []llm.Provider
}

// NewAppreciator creates an appreciator over the given providers.
func NewAppreciator(providers []llm.Provider) *Appreciator {
	return &Appreciator{providers: providers}
}

// Generate analyzes the full transcript text. Unlike the batched
// annotation paths, total parse failure degrades to an empty result
// instead of an error: the auto-title step after transcription must never
// fail a ready video.
func (a *Appreciator) Generate(ctx context.Context, fullText string) (*types.Appreciation, error) {
	log.Printf("[Appreciation] Analyzing text (%d chars)...", len(fullText))

	raw, err := llm.Generate(ctx, a.providers, appreciationSystemPrompt, fullText, config.ProviderTimeout, "Appreciation", nil)
	if err != nil {
		return nil, err
	}

	var result types.Appreciation
	if err := llm.ParseObject(raw, &result); err != nil {
		log.Printf("[Appreciation] Warning: failed to parse response: %s", preview(raw))
		return &types.Appreciation{}, nil
	}
	return &result, nil
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
