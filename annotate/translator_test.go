package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"reelscript/llm"
	"reelscript/types"
)

// echoProvider translates every sentence to "T:<original>" so tests can
// verify merge-back alignment.
type echoProvider struct{ calls int }

func (e *echoProvider) Name() string { return "echo" }

func (e *echoProvider) Generate(_ context.Context, _, prompt string) (string, error) {
	e.calls++
	var items []string
	if err := json.Unmarshal([]byte(prompt), &items); err != nil {
		return "", err
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "T:" + item
	}
	b, _ := json.Marshal(out)
	return string(b), nil
}

// failAlways simulates a dead provider.
type failAlways struct{}

func (failAlways) Name() string { return "dead" }
func (failAlways) Generate(context.Context, string, string) (string, error) {
	return "", errors.New("unavailable")
}

func TestTranslateAnchorsSentenceOnFinalFragment(t *testing.T) {
	segments := []types.Segment{
		seg(1, "Once you break their trust,"),
		seg(2, "that's it."),
		seg(3, "Forgiveness runs deeper."),
	}

	tr := NewTranslator([]llm.Provider{&echoProvider{}})
	out, err := tr.Translate(context.Background(), segments)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if out[0].Translation != "" {
		t.Errorf("first fragment unexpectedly translated: %q", out[0].Translation)
	}
	if want := "T:Once you break their trust, that's it."; out[1].Translation != want {
		t.Errorf("sentence-final fragment = %q, want %q", out[1].Translation, want)
	}
	if want := "T:Forgiveness runs deeper."; out[2].Translation != want {
		t.Errorf("single-fragment sentence = %q, want %q", out[2].Translation, want)
	}

	// Input slice must be untouched (all-or-nothing persistence depends on it).
	if segments[1].Translation != "" {
		t.Error("Translate mutated its input")
	}
}

func TestTranslatePreservesOrderAcrossBatches(t *testing.T) {
	// 25 one-sentence segments with batch size 20 → two batches (20 + 5);
	// merged output must keep the original 25-item order.
	segments := make([]types.Segment, 25)
	for i := range segments {
		segments[i] = seg(i+1, fmt.Sprintf("Sentence number %d.", i))
	}

	tr := NewTranslator([]llm.Provider{&echoProvider{}})
	out, err := tr.Translate(context.Background(), segments)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(out) != 25 {
		t.Fatalf("got %d segments, want 25", len(out))
	}
	for i, s := range out {
		want := fmt.Sprintf("T:Sentence number %d.", i)
		if s.Translation != want {
			t.Errorf("segment %d translation = %q, want %q", i, s.Translation, want)
		}
	}
}

func TestTranslateAllProvidersFail(t *testing.T) {
	tr := NewTranslator([]llm.Provider{failAlways{}})
	if _, err := tr.Translate(context.Background(), []types.Segment{seg(1, "Hello.")}); err == nil {
		t.Error("expected error when every provider fails")
	}
}

func TestTranslatedGuard(t *testing.T) {
	if Translated([]types.Segment{seg(1, "a"), seg(2, "b")}) {
		t.Error("untranslated segments reported as translated")
	}
	segments := []types.Segment{seg(1, "a"), {Index: 2, Text: "b", Translation: "乙"}}
	if !Translated(segments) {
		t.Error("translated segments not detected")
	}
}
