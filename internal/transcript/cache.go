package transcript

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/redis/go-redis/v9"
)

// CacheConfig configures the transcript cache. RedisURL may be empty to
// keep the cache in memory only.
type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
	RedisURL   string
}

// Cache is a Fetcher that keeps transcripts in memory (L1) and optionally
// in Redis (L2). Transcripts are immutable so entries are shared.
type Cache struct {
	next       Fetcher
	l1         sync.Map // key → *cacheEntry
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int
	logger     logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	transcript *Transcript
	expiresAt  time.Time
}

// NewCache wraps next with the cache. An unreachable Redis disables L2
// instead of failing.
func NewCache(ctx context.Context, cfg CacheConfig, next Fetcher, log logger.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	c := &Cache{next: next, ttl: cfg.TTL, maxEntries: cfg.MaxEntries, logger: log}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn(ctx, "transcript cache: invalid redis URL, L2 disabled: %v", err)
		} else {
			rdb := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := rdb.Ping(pingCtx).Err(); err != nil {
				log.Warn(ctx, "transcript cache: redis unreachable, L2 disabled: %v", err)
				rdb.Close()
			} else {
				c.rdb = rdb
				log.Info(ctx, "transcript cache: L2 redis connected (%s)", opts.Addr)
			}
		}
	}

	return c
}

func cacheKey(videoID string, langs []string) string {
	hash := sha256.Sum256([]byte(videoID + "|" + strings.Join(langs, ",")))
	return fmt.Sprintf("yt:transcript:%x", hash[:12])
}

// Fetch returns a cached transcript or fetches and stores one. Failures are
// not cached.
func (c *Cache) Fetch(ctx context.Context, videoID string, langs []string) (*Transcript, error) {
	key := cacheKey(videoID, langs)
	if t, ok := c.get(ctx, key); ok {
		c.hits.Add(1)
		return t, nil
	}
	c.misses.Add(1)

	t, err := c.next.Fetch(ctx, videoID, langs)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, t)
	return t, nil
}

func (c *Cache) get(ctx context.Context, key string) (*Transcript, bool) {
	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			c.logger.Debug(ctx, "transcript cache: L1 hit %s", key)
			return entry.transcript, true
		}
		c.l1.Delete(key)
	}

	if c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false
	}
	c.logger.Debug(ctx, "transcript cache: L2 hit %s", key)
	c.storeL1(key, &t)
	return &t, true
}

func (c *Cache) set(ctx context.Context, key string, t *Transcript) {
	c.storeL1(key, t)

	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug(ctx, "transcript cache: L2 set failed: %v", err)
	}
}

func (c *Cache) storeL1(key string, t *Transcript) {
	c.evictIfNeeded()
	c.l1.Store(key, &cacheEntry{transcript: t, expiresAt: time.Now().Add(c.ttl)})
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close releases the Redis connection, if any.
func (c *Cache) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// evictIfNeeded drops expired entries, then the oldest ones, until there
// is room for one more.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if now.After(val.(*cacheEntry).expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return true
	})

	for count >= c.maxEntries {
		var (
			oldestKey any
			oldestAt  time.Time
		)
		c.l1.Range(func(key, val any) bool {
			e := val.(*cacheEntry)
			if oldestKey == nil || e.expiresAt.Before(oldestAt) {
				oldestKey, oldestAt = key, e.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}
