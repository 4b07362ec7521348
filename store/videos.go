package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"reelscript/types"
)

// CreateVideo claims the video's URL and persists the record. The URL
// index entry is claimed with SETNX, so under concurrent submissions of
// the same URL exactly one caller creates a record; the others receive
// the winner's id with created=false.
func (s *Store) CreateVideo(ctx context.Context, v *types.Video) (existingID string, created bool, err error) {
	urlKey := videoURLKeyPrefix + types.HashURL(v.URL)

	ok, err := s.client.SetNX(ctx, urlKey, v.ID, 0).Result()
	if err != nil {
		return "", false, fmt.Errorf("claim url index: %w", err)
	}
	if !ok {
		id, err := s.client.Get(ctx, urlKey).Result()
		if err != nil {
			return "", false, fmt.Errorf("read url index: %w", err)
		}
		return id, false, nil
	}

	if err := s.SaveVideo(ctx, v); err != nil {
		// Roll the claim back so a failed create does not poison the URL.
		s.client.Del(ctx, urlKey)
		return "", false, err
	}
	if err := s.client.ZAdd(ctx, videosIndexKey, redis.Z{
		Score:  float64(v.CreatedAt.UnixNano()),
		Member: v.ID,
	}).Err(); err != nil {
		return "", false, fmt.Errorf("index video: %w", err)
	}
	return v.ID, true, nil
}

// SaveVideo upserts the whole record. Stage transitions call this at every
// checkpoint so concurrent readers always observe a well-defined state.
func (s *Store) SaveVideo(ctx context.Context, v *types.Video) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, videoKeyPrefix+v.ID, b, 0).Err(); err != nil {
		return fmt.Errorf("save video %s: %w", v.ID, err)
	}
	return nil
}

// GetVideo looks a video up by id.
func (s *Store) GetVideo(ctx context.Context, id string) (*types.Video, error) {
	b, err := s.client.Get(ctx, videoKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var v types.Video
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode video %s: %w", id, err)
	}
	return &v, nil
}

// GetVideoByURL resolves a URL through the dedup index.
func (s *Store) GetVideoByURL(ctx context.Context, url string) (*types.Video, error) {
	id, err := s.client.Get(ctx, videoURLKeyPrefix+types.HashURL(url)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetVideo(ctx, id)
}

// ListVideos returns all videos, newest first.
func (s *Store) ListVideos(ctx context.Context) ([]*types.Video, error) {
	ids, err := s.client.ZRevRange(ctx, videosIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	videos := make([]*types.Video, 0, len(ids))
	for _, id := range ids {
		v, err := s.GetVideo(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// DeleteVideo removes the video, its URL claim, its index entry, and its
// transcript. The stored media file is the caller's to remove.
func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	v, err := s.GetVideo(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, videoKeyPrefix+id)
	pipe.Del(ctx, videoURLKeyPrefix+types.HashURL(v.URL))
	pipe.Del(ctx, transcriptKeyPrefix+id)
	pipe.ZRem(ctx, videosIndexKey, id)
	_, err = pipe.Exec(ctx)
	return err
}
