package annotate

import (
	"strings"

	"reelscript/types"
)

// Sentence is an ephemeral grouping of consecutive segments ending at
// sentence-terminal punctuation. Translating whole sentences instead of
// 8-12-word fragments gives far better results; Indices records which
// segments (positions, 0-based) contributed so results can be mapped back.
type Sentence struct {
	Text    string
	Indices []int
}

// MergeSentences scans segments in order, space-joining their text into a
// sentence buffer that closes when a segment's trimmed text ends with `.`,
// `!`, or `?`. Any non-empty remainder is flushed as a final sentence.
// The Indices lists partition 0..len(segments)-1 exactly.
func MergeSentences(segments []types.Segment) []Sentence {
	var sentences []Sentence
	var buf strings.Builder
	var indices []int

	for i, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(text)
		indices = append(indices, i)

		if endsSentence(text) {
			sentences = append(sentences, Sentence{
				Text:    strings.TrimSpace(buf.String()),
				Indices: indices,
			})
			buf.Reset()
			indices = nil
		}
	}

	if strings.TrimSpace(buf.String()) != "" {
		sentences = append(sentences, Sentence{
			Text:    strings.TrimSpace(buf.String()),
			Indices: indices,
		})
	}

	return sentences
}

func endsSentence(text string) bool {
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
