package transcribe

import (
	"strings"

	"reelscript/types"
)

// splitPunctuation closes a segment when a word ends with any of these.
// Note the comma: display segments break more eagerly than the sentence
// units used later for translation.
const splitPunctuation = ".?!,"

// BuildSegments converts recognizer chunks into ordered display segments.
// Words accumulate until either maxWords is reached or a word ends in
// splitPunctuation; a trailing partial accumulation is flushed at end of
// input. Chunks without word timestamps pass through verbatim as a single
// segment. Indices run 1..N across the whole transcript, not per chunk.
func BuildSegments(chunks []Chunk, maxWords int) []types.Segment {
	if maxWords <= 0 {
		maxWords = 12
	}

	var segments []types.Segment
	idx := 1

	for _, chunk := range chunks {
		if len(chunk.Words) == 0 {
			text := strings.TrimSpace(chunk.Text)
			if text == "" {
				continue
			}
			segments = append(segments, types.Segment{
				Index: idx,
				Start: chunk.Start,
				End:   chunk.End,
				Text:  text,
			})
			idx++
			continue
		}

		var words []string
		var start float64
		started := false

		flush := func(end float64) {
			text := strings.TrimSpace(strings.Join(words, " "))
			if text != "" {
				segments = append(segments, types.Segment{
					Index: idx,
					Start: start,
					End:   end,
					Text:  text,
				})
				idx++
			}
			words = words[:0]
			started = false
		}

		for _, w := range chunk.Words {
			if !started {
				start = w.Start
				started = true
			}
			words = append(words, strings.TrimSpace(w.Text))

			if len(words) >= maxWords || endsWithSplit(w.Text) {
				flush(w.End)
			}
		}
		if len(words) > 0 {
			flush(chunk.Words[len(chunk.Words)-1].End)
		}
	}

	return segments
}

func endsWithSplit(word string) bool {
	trimmed := strings.TrimRight(word, " \t")
	if trimmed == "" {
		return false
	}
	return strings.ContainsRune(splitPunctuation, rune(trimmed[len(trimmed)-1]))
}
