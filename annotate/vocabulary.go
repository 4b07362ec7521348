package annotate

import (
	"context"

	"reelscript/config"
	"reelscript/llm"
	"reelscript/types"
)

const vocabularySystemPrompt = `You are an English vocabulary analyzer for intermediate Chinese-speaking learners.
Analyze the following English subtitle segments and extract USEFUL phrases and difficult vocabulary.

Rules:
- PRIORITIZE: phrasal verbs, idioms, collocations, multi-word expressions
  e.g. "break their trust", "done for good", "act like", "run deeper than"
- Also include: intermediate+ single words that are NOT basic
- SKIP all basic/common words: cared, treat, hurt, lose, find, make, keep, break, love, hate, feel, think, want, need, know, see, go, come, get, take, give, let, tell, say, ask, try, use, help, call, look, show, turn, play, run, move, hold, bring, set, put, leave, work, live, start, stop, open, close, read, write, etc.
- For each item provide the EXACT phrase as it appears and 繁體中文 translation
- Output ONLY a JSON array of arrays, one per segment
- Each inner array has objects with "word" and "translation" fields
- If a segment has nothing notable, use empty array
- Aim for 0-2 items per segment, quality over quantity

Example input: ["Once you break their trust, that's it", "They forgive not because they're weak"]
Example output: [[{"word":"break their trust","translation":"破壞他們的信任"}],[{"word":"forgive","translation":"原諒"}]]`

// Analyzer extracts difficult-vocabulary glosses per segment. Unlike
// translation it operates on raw segment texts, one result list per
// segment, so no sentence merging is involved.
type Analyzer struct {
	providers []llm.Provider
}

// NewAnalyzer creates a vocabulary analyzer over the given providers.
func NewAnalyzer(providers []llm.Provider) *Analyzer {
	return &Analyzer{providers: providers}
}

// Analyze returns a new segment slice with vocabulary lists filled in 1:1.
// The input is not mutated.
func (a *Analyzer) Analyze(ctx context.Context, segments []types.Segment) ([]types.Segment, error) {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}

	batcher := &llm.Batcher[[]types.VocabEntry]{
		Providers: a.providers,
		BatchSize: config.VocabularyBatchSize,
		System:    vocabularySystemPrompt,
		Timeout:   config.ProviderTimeout,
		Label:     "Vocabulary",
	}
	vocab, err := batcher.Run(ctx, texts)
	if err != nil {
		return nil, err
	}

	out := make([]types.Segment, len(segments))
	copy(out, segments)
	for i := range out {
		out[i].Vocabulary = vocab[i]
	}
	return out, nil
}

// Analyzed reports whether any segment already carries vocabulary, the
// idempotence guard applied by the caller.
func Analyzed(segments []types.Segment) bool {
	for _, s := range segments {
		if len(s.Vocabulary) > 0 {
			return true
		}
	}
	return false
}
