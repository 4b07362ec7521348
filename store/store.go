package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reelscript/config"
)

// ErrNotFound is returned for point lookups that match no record.
var ErrNotFound = errors.New("record not found")

// Key layout:
//
//	video:<id>          JSON-encoded Video
//	video:url:<hash>    video id, claimed with SETNX for URL dedup
//	videos:index        ZSET of ids scored by creation time
//	transcript:<id>     JSON-encoded Transcript, keyed by video id
//	collection:<id>     JSON-encoded Collection (items embedded)
//	collections:index   ZSET of ids scored by creation time
const (
	videoKeyPrefix      = "video:"
	videoURLKeyPrefix   = "video:url:"
	videosIndexKey      = "videos:index"
	transcriptKeyPrefix = "transcript:"
	collectionKeyPrefix = "collection:"
	collectionsIndexKey = "collections:index"
)

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store persists Video, Transcript, and Collection records in Redis.
// The pipeline only needs point lookup by id and URL plus whole-record
// upsert; list operations exist for the query routes.
type Store struct {
	client *redis.Client
}

// NewFromEnv creates a Store using REDIS_ADDR (default localhost:6379),
// REDIS_PASS, and REDIS_DB.
func NewFromEnv() (*Store, error) {
	cfg := Config{
		Addr:     config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password: config.GetEnvOrDefault("REDIS_PASS", ""),
		DB:       config.GetEnvInt("REDIS_DB", 0),
	}
	return New(cfg)
}

// New creates a Store and verifies connectivity.
func New(cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Store{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
