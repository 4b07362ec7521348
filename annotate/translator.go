package annotate

import (
	"context"
	"log"

	"reelscript/config"
	"reelscript/llm"
	"reelscript/types"
)

const translatorSystemPrompt = `You are a professional English-to-Traditional-Chinese translator.
Translate the following English sentences into natural, fluent 繁體中文.

Rules:
- Output ONLY a JSON array of translated strings, one per input sentence
- Keep translations concise and natural
- Use 繁體中文 (Traditional Chinese), NOT 簡體
- Do NOT add explanations, notes, or formatting — just the JSON array
- Preserve the exact number of items
- Each translation should be a complete sentence ending with 。

Example input: ["Hello everyone.", "Today we talk about lighting."]
Example output: ["大家好。", "今天我們來聊聊打光。"]`

// Translator produces Traditional-Chinese translations for transcript
// segments. Segments are first merged into sentences, the sentences
// translated in batches, and each sentence's translation written back onto
// the LAST contributing segment only. Leaving earlier fragments empty is a
// deliberate display choice: the sentence's translation appears once,
// anchored to the fragment that ends it, instead of repeating on every
// fragment.
type Translator struct {
	providers []llm.Provider
}

// NewTranslator creates a translator over the given provider fallback list.
func NewTranslator(providers []llm.Provider) *Translator {
	return &Translator{providers: providers}
}

// Translate returns a new segment slice with translations filled in. The
// input is not mutated, so a failed run leaves the caller's data untouched.
func (t *Translator) Translate(ctx context.Context, segments []types.Segment) ([]types.Segment, error) {
	sentences := MergeSentences(segments)
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}

	log.Printf("[Translator] Merged %d segments into %d sentences", len(segments), len(sentences))

	batcher := &llm.Batcher[string]{
		Providers: t.providers,
		BatchSize: config.TranslationBatchSize,
		System:    translatorSystemPrompt,
		Timeout:   config.ProviderTimeout,
		Label:     "Translator",
	}
	translations, err := batcher.Run(ctx, texts)
	if err != nil {
		return nil, err
	}

	out := make([]types.Segment, len(segments))
	copy(out, segments)
	for si, sentence := range sentences {
		if len(sentence.Indices) == 0 {
			continue
		}
		last := sentence.Indices[len(sentence.Indices)-1]
		out[last].Translation = translations[si]
	}
	return out, nil
}

// Translated reports whether any segment already carries a translation,
// the idempotence guard applied before invoking providers again.
func Translated(segments []types.Segment) bool {
	for _, s := range segments {
		if s.Translation != "" {
			return true
		}
	}
	return false
}
