package cache

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/stats"
	"github.com/astrellis/botrelay/backend/internal/store"
)

const (
	keyPrefix  = "bot:response:"
	DefaultTTL = 24 * time.Hour
)

var whitespace = regexp.MustCompile(`\s+`)

// Normalize derives the cache key form of message content: lowercase,
// trimmed, consecutive whitespace collapsed to a single space.
func Normalize(content string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(strings.ToLower(content)), " ")
}

// ResponseCache memoizes bot replies by normalized message content.
// Keys are content-only, so identical text shares one cached answer
// across sessions and senders. Backend failures are absorbed as misses;
// a lookup never fails, it only degrades to calling the provider.
type ResponseCache struct {
	kv    store.KV
	stats *stats.Collector
	ttl   time.Duration
}

// New returns a cache over the given KV backend. A non-positive ttl
// falls back to DefaultTTL; entries always expire after this cache's
// own TTL, never the backend default.
func New(kv store.KV, collector *stats.Collector, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{kv: kv, stats: collector, ttl: ttl}
}

// Key returns the backend key for the given message content.
func (c *ResponseCache) Key(content string) string {
	return keyPrefix + Normalize(content)
}

// Lookup returns the cached reply for content, if any. Hit and miss
// counters are updated on every call.
func (c *ResponseCache) Lookup(ctx context.Context, content string) (chat.Message, bool) {
	key := c.Key(content)

	raw, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		log.Printf("[cache] backend get failed for %q, treating as miss: %v", key, err)
		c.stats.IncrCacheMisses()
		return chat.Message{}, false
	}
	if !ok {
		c.stats.IncrCacheMisses()
		return chat.Message{}, false
	}

	var cached chat.Message
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		log.Printf("[cache] corrupt entry for %q, treating as miss: %v", key, err)
		c.stats.IncrCacheMisses()
		return chat.Message{}, false
	}

	c.stats.IncrCacheHits()
	return cached, true
}

// Store caches a reply under the normalized content key. Failures are
// logged and swallowed; caching is best-effort.
func (c *ResponseCache) Store(ctx context.Context, content string, reply chat.Message) {
	key := c.Key(content)

	raw, err := json.Marshal(reply)
	if err != nil {
		log.Printf("[cache] failed to encode reply for %q: %v", key, err)
		return
	}
	if err := c.kv.Set(ctx, key, string(raw), c.ttl); err != nil {
		log.Printf("[cache] backend set failed for %q: %v", key, err)
	}
}

// Clear removes every entry under this cache's prefix and resets the
// hit/miss counters.
func (c *ResponseCache) Clear(ctx context.Context) error {
	keys, err := c.kv.ScanPrefix(ctx, keyPrefix)
	if err != nil {
		return err
	}
	if err := c.kv.Delete(ctx, keys...); err != nil {
		return err
	}
	c.stats.ResetCache()
	return nil
}

// HitRatio returns hits/(hits+misses), 0.0 before any lookup.
func (c *ResponseCache) HitRatio() float64 {
	return c.stats.CacheHitRatio()
}
