package annotate

import (
	"strings"
	"testing"

	"reelscript/types"
)

func seg(index int, text string) types.Segment {
	return types.Segment{Index: index, Text: text}
}

func TestMergeSentencesGroupsUntilTerminalPunctuation(t *testing.T) {
	segments := []types.Segment{
		seg(1, "Once you break their trust,"),
		seg(2, "that's it."),
		seg(3, "They forgive"),
		seg(4, "not because they're weak!"),
		seg(5, "Trailing fragment"),
	}

	sentences := MergeSentences(segments)
	if len(sentences) != 3 {
		t.Fatalf("got %d sentences, want 3: %+v", len(sentences), sentences)
	}
	if sentences[0].Text != "Once you break their trust, that's it." {
		t.Errorf("sentence 1 = %q", sentences[0].Text)
	}
	if sentences[2].Text != "Trailing fragment" {
		t.Errorf("flushed remainder = %q", sentences[2].Text)
	}
}

func TestMergeSentencesIndicesPartitionInput(t *testing.T) {
	segments := []types.Segment{
		seg(1, "One."), seg(2, "Two"), seg(3, "and three?"), seg(4, "Four"), seg(5, "five"),
	}

	sentences := MergeSentences(segments)

	seen := make(map[int]bool)
	next := 0
	for _, s := range sentences {
		for _, i := range s.Indices {
			if seen[i] {
				t.Errorf("index %d in two sentences", i)
			}
			seen[i] = true
			if i != next {
				t.Errorf("indices out of order: got %d, want %d", i, next)
			}
			next++
		}
	}
	if len(seen) != len(segments) {
		t.Errorf("partition covers %d of %d segments", len(seen), len(segments))
	}

	// Concatenating sentence texts reproduces the full-text join.
	var texts []string
	for _, s := range sentences {
		texts = append(texts, s.Text)
	}
	if got, want := strings.Join(texts, " "), types.FullText(segments); got != want {
		t.Errorf("joined sentences = %q, want %q", got, want)
	}
}

func TestMergeSentencesCommaDoesNotClose(t *testing.T) {
	sentences := MergeSentences([]types.Segment{seg(1, "First part,"), seg(2, "second part.")})
	if len(sentences) != 1 {
		t.Fatalf("comma closed a sentence: %+v", sentences)
	}
}

func TestMergeSentencesEmpty(t *testing.T) {
	if got := MergeSentences(nil); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
