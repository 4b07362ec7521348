package transcribe

import "context"

// Word is a single recognized word with its timestamps in seconds.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"word"`
}

// Chunk is a recognizer-native span of speech. Words may be empty when the
// backend produced no word-level timestamps for the span; such chunks pass
// through segmentation verbatim.
type Chunk struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Result is the raw speech-recognition output for one media file.
type Result struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Chunks   []Chunk `json:"segments"`
}

// Recognizer is the speech-to-text collaborator. Implementations wrap a
// pre-existing ASR engine; the pipeline only depends on this contract.
type Recognizer interface {
	Transcribe(ctx context.Context, mediaPath string) (*Result, error)
}
