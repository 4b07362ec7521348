package types

import "time"

// Collection is a named grouping of videos for study.
type Collection struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Items       []CollectionItem `json:"items,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// CollectionItem links a video into a collection with optional study notes.
type CollectionItem struct {
	ID      string    `json:"id"`
	VideoID string    `json:"video_id"`
	Notes   string    `json:"notes,omitempty"`
	AddedAt time.Time `json:"added_at"`
}
