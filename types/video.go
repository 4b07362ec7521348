package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Video lifecycle statuses. Records are created in StatusDownloading;
// StatusReady and StatusFailed are terminal.
const (
	StatusDownloading  = "downloading"
	StatusTranscribing = "transcribing"
	StatusReady        = "ready"
	StatusFailed       = "failed"
)

// Video source tags derived from the submitted URL.
const (
	SourceInstagram = "ig"
	SourceYouTube   = "youtube"
	SourceUnknown   = "unknown"
)

// Video represents a submitted video and its pipeline state.
type Video struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	Title        string     `json:"title,omitempty"`
	Source       string     `json:"source"`
	Duration     float64    `json:"duration,omitempty"`
	Thumbnail    string     `json:"thumbnail,omitempty"`
	Channel      string     `json:"channel,omitempty"`
	Filename     string     `json:"filename,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// HashURL creates a stable short ID from a video URL, used as the
// deduplication index key so raw URLs never appear in store keys.
func HashURL(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
