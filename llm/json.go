package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// Provider responses are JSON by instruction, but models routinely wrap
// them in markdown fences or surround them with prose. These helpers
// recover the structured payload: strip fence-delimiter lines, try a
// direct parse, then fall back to the outermost bracket pair of the
// expected container.

var errNoJSON = errors.New("no parseable JSON found in response")

// StripFences removes lines that are purely markdown code-fence
// delimiters (``` or ```json) and trims the remainder.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.Contains(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ParseArray decodes a JSON array from a provider response into v.
func ParseArray(raw string, v any) error {
	return parseContainer(raw, '[', ']', v)
}

// ParseObject decodes a JSON object from a provider response into v.
func ParseObject(raw string, v any) error {
	return parseContainer(raw, '{', '}', v)
}

func parseContainer(raw string, open, closing byte, v any) error {
	text := StripFences(raw)

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	// Fall back to the outermost matching bracket pair.
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start == -1 || end == -1 || end <= start {
		return errNoJSON
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return errNoJSON
	}
	return nil
}
