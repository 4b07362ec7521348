package types

import "time"

// Segment is a short, time-stamped slice of transcript text, the atomic
// unit shown to end users. Translation and Vocabulary stay empty until the
// corresponding annotation stage has run.
type Segment struct {
	Index       int          `json:"index"`
	Start       float64      `json:"start"`
	End         float64      `json:"end"`
	Text        string       `json:"text"`
	Translation string       `json:"translation,omitempty"`
	Vocabulary  []VocabEntry `json:"vocabulary,omitempty"`
}

// VocabEntry is a single difficult word or phrase with its translation.
type VocabEntry struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

// Quote is a memorable sentence from the source text with its translation.
type Quote struct {
	En string `json:"en"`
	Zh string `json:"zh"`
}

// Appreciation is the generated study summary for a transcript: a theme
// line, exactly three key points, and exactly three bilingual quotes.
type Appreciation struct {
	Title        string   `json:"title,omitempty"`
	Theme        string   `json:"theme"`
	KeyPoints    []string `json:"keyPoints"`
	GoldenQuotes []Quote  `json:"goldenQuotes"`
}

// Empty reports whether the appreciation carries no generated content.
func (a *Appreciation) Empty() bool {
	return a == nil || (a.Title == "" && a.Theme == "" && len(a.KeyPoints) == 0 && len(a.GoldenQuotes) == 0)
}

// Transcript holds the ordered segments for exactly one ready video.
// Segment indices are a contiguous 1-based sequence matching array order.
type Transcript struct {
	VideoID      string        `json:"video_id"`
	Language     string        `json:"language"`
	Segments     []Segment     `json:"segments"`
	FullText     string        `json:"full_text"`
	Appreciation *Appreciation `json:"appreciation,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// FullText joins segment texts with single spaces, the canonical plain-text
// form persisted alongside the segments.
func FullText(segments []Segment) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += " "
		}
		out += s.Text
	}
	return out
}
