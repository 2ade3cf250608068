package albion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultFeedTTL is how long a stored feed is served before refetching
const DefaultFeedTTL = 10 * time.Minute

// FeedSnapshot is a stored copy of the raw battle feed
type FeedSnapshot struct {
	FetchedAt time.Time   `json:"fetched_at"`
	Battles   []RawBattle `json:"battles"`
}

// FeedCache persists the raw battle feed between runs
type FeedCache interface {
	// Load returns the stored snapshot, or false when nothing usable is stored
	Load(ctx context.Context) (*FeedSnapshot, bool, error)
	Store(ctx context.Context, snapshot *FeedSnapshot) error
}

// FileCache stores the feed as a JSON file, data.json by default
type FileCache struct {
	path   string
	maxAge time.Duration
	now    func() time.Time
}

// NewFileCache creates a file cache. A zero maxAge never expires the file.
func NewFileCache(path string, maxAge time.Duration) *FileCache {
	return &FileCache{path: path, maxAge: maxAge, now: time.Now}
}

func (c *FileCache) Load(ctx context.Context) (*FeedSnapshot, bool, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read feed cache %s: %w", c.path, err)
	}

	var snapshot FeedSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// A corrupt cache is refetched rather than failing the cycle
		log.Warn().Err(err).Str("path", c.path).Msg("Ignoring unreadable feed cache")
		return nil, false, nil
	}

	if c.maxAge > 0 && c.now().Sub(snapshot.FetchedAt) > c.maxAge {
		return nil, false, nil
	}

	return &snapshot, true, nil
}

func (c *FileCache) Store(ctx context.Context, snapshot *FeedSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode feed cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create feed cache directory: %w", err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write feed cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace feed cache: %w", err)
	}

	return nil
}

// RedisCache stores the feed under one key with a TTL so several
// processes can share a single fetch.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache creates a Redis feed cache from a redis:// URL
func NewRedisCache(redisURL, guildID string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return NewRedisCacheWithClient(redis.NewClient(opts), guildID, ttl), nil
}

// NewRedisCacheWithClient wraps an existing Redis client
func NewRedisCacheWithClient(client *redis.Client, guildID string, ttl time.Duration) *RedisCache {
	key := "albion:battles"
	if guildID != "" {
		key += ":" + guildID
	}
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Load(ctx context.Context) (*FeedSnapshot, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read feed from redis: %w", err)
	}

	var snapshot FeedSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("Ignoring unreadable feed in redis")
		return nil, false, nil
	}

	return &snapshot, true, nil
}

func (c *RedisCache) Store(ctx context.Context, snapshot *FeedSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode feed cache: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write feed to redis: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedClient serves the battle feed from a FeedCache and only calls the
// API on a miss or when a refresh is forced.
type CachedClient struct {
	client GameinfoAPI
	cache  FeedCache
	pages  int
	now    func() time.Time
	mutex  sync.Mutex
}

// NewCachedClient creates a caching wrapper around a gameinfo client
func NewCachedClient(client GameinfoAPI, cache FeedCache, pages int) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
		pages:  max(1, pages),
		now:    time.Now,
	}
}

// Battles returns the raw feed. With refresh set the cache is bypassed
// and overwritten.
func (c *CachedClient) Battles(ctx context.Context, refresh bool) (*FeedSnapshot, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !refresh {
		snapshot, ok, err := c.cache.Load(ctx)
		if err != nil {
			// Fall through to the API; a broken cache must not stop the dashboard
			log.Warn().Err(err).Msg("Feed cache unavailable")
		}
		if ok {
			feedCacheLookups.WithLabelValues("hit").Inc()
			log.Debug().
				Time("fetched_at", snapshot.FetchedAt).
				Int("battles", len(snapshot.Battles)).
				Msg("Using cached battle feed (API call saved)")
			return snapshot, nil
		}
		feedCacheLookups.WithLabelValues("miss").Inc()
	}

	log.Debug().Bool("refresh", refresh).Msg("Fetching fresh battle feed from API")
	battles, err := c.client.GetRecentBattles(ctx, c.pages)
	if err != nil {
		return nil, err
	}

	snapshot := &FeedSnapshot{FetchedAt: c.now().UTC(), Battles: battles}
	if err := c.cache.Store(ctx, snapshot); err != nil {
		log.Warn().Err(err).Msg("Failed to store battle feed")
	}

	return snapshot, nil
}
