package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"reelscript/types"
)

// SaveCollection upserts a collection, items included.
func (s *Store) SaveCollection(ctx context.Context, c *types.Collection) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, collectionKeyPrefix+c.ID, b, 0)
	pipe.ZAdd(ctx, collectionsIndexKey, redis.Z{
		Score:  float64(c.CreatedAt.UnixNano()),
		Member: c.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save collection %s: %w", c.ID, err)
	}
	return nil
}

// GetCollection looks a collection up by id.
func (s *Store) GetCollection(ctx context.Context, id string) (*types.Collection, error) {
	b, err := s.client.Get(ctx, collectionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var c types.Collection
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", id, err)
	}
	return &c, nil
}

// ListCollections returns all collections, newest first.
func (s *Store) ListCollections(ctx context.Context) ([]*types.Collection, error) {
	ids, err := s.client.ZRevRange(ctx, collectionsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	collections := make([]*types.Collection, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetCollection(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, nil
}

// DeleteCollection removes a collection and its index entry. Videos inside
// it are untouched.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, collectionKeyPrefix+id)
	pipe.ZRem(ctx, collectionsIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}
