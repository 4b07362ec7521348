package downloader

import (
	"context"
	"regexp"

	"reelscript/types"
)

// Info is the metadata-only probe result, fetched without downloading.
type Info struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
	Channel   string  `json:"channel"`
	Source    string  `json:"source"`
}

// Result is the acquisition outcome. Success false carries the provider's
// error message verbatim; the pipeline records it as a terminal failure.
type Result struct {
	Success   bool    `json:"success"`
	Filename  string  `json:"filename,omitempty"`
	Title     string  `json:"title,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Channel   string  `json:"channel,omitempty"`
	Source    string  `json:"source,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Downloader is the acquisition collaborator: fetch metadata or download
// a video into local storage.
type Downloader interface {
	Probe(ctx context.Context, url string) (*Info, error)
	Download(ctx context.Context, url, videoID string) *Result
}

var (
	instagramRe = regexp.MustCompile(`instagram\.com|instagr\.am`)
	youtubeRe   = regexp.MustCompile(`youtube\.com|youtu\.be`)
)

// DetectSource tags a URL by hosting site.
func DetectSource(url string) string {
	switch {
	case instagramRe.MatchString(url):
		return types.SourceInstagram
	case youtubeRe.MatchString(url):
		return types.SourceYouTube
	default:
		return types.SourceUnknown
	}
}

// SupportedURL reports whether the URL matches an accepted source pattern.
// Submissions for unsupported sites are rejected before any record exists.
func SupportedURL(url string) bool {
	return DetectSource(url) != types.SourceUnknown
}
