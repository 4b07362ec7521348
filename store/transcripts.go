package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"reelscript/types"
)

// SaveTranscript upserts the whole transcript aggregate. Annotation stages
// build a new segment slice and swap it in with one call, so readers never
// see a half-annotated transcript.
func (s *Store) SaveTranscript(ctx context.Context, t *types.Transcript) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, transcriptKeyPrefix+t.VideoID, b, 0).Err(); err != nil {
		return fmt.Errorf("save transcript for %s: %w", t.VideoID, err)
	}
	return nil
}

// GetTranscript looks a transcript up by its video id.
func (s *Store) GetTranscript(ctx context.Context, videoID string) (*types.Transcript, error) {
	b, err := s.client.Get(ctx, transcriptKeyPrefix+videoID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var t types.Transcript
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode transcript for %s: %w", videoID, err)
	}
	return &t, nil
}
