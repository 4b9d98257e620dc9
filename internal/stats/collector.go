package stats

import "sync/atomic"

// Snapshot is a point-in-time view of the pipeline counters.
type Snapshot struct {
	TotalRequests int64 `json:"totalRequests"`
	AIRequests    int64 `json:"aiRequests"`
	ErrorCount    int64 `json:"errorCount"`
	TokensUsed    int64 `json:"tokensUsed"`
	CacheHits     int64 `json:"cacheHits"`
	CacheMisses   int64 `json:"cacheMisses"`
}

// CachedResponses is the number of requests answered without a
// provider call.
func (s Snapshot) CachedResponses() int64 {
	return s.TotalRequests - s.AIRequests
}

// Collector holds the process-local pipeline counters. All methods are
// safe for concurrent use from multiple dispatch workers.
type Collector struct {
	totalRequests atomic.Int64
	aiRequests    atomic.Int64
	errorCount    atomic.Int64
	tokensUsed    atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
}

// NewCollector returns a zeroed collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncrTotalRequests() { c.totalRequests.Add(1) }
func (c *Collector) IncrAIRequests()    { c.aiRequests.Add(1) }
func (c *Collector) IncrErrors()        { c.errorCount.Add(1) }
func (c *Collector) IncrCacheHits()     { c.cacheHits.Add(1) }
func (c *Collector) IncrCacheMisses()   { c.cacheMisses.Add(1) }

// AddTokens records provider-reported token usage.
func (c *Collector) AddTokens(n int64) {
	if n > 0 {
		c.tokensUsed.Add(n)
	}
}

// CacheHitRatio returns hits/(hits+misses), or 0.0 before any lookup.
func (c *Collector) CacheHitRatio() float64 {
	hits := c.cacheHits.Load()
	total := hits + c.cacheMisses.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// Snapshot reads all counters at once. The read is not atomic across
// counters, which is fine for reporting.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TotalRequests: c.totalRequests.Load(),
		AIRequests:    c.aiRequests.Load(),
		ErrorCount:    c.errorCount.Load(),
		TokensUsed:    c.tokensUsed.Load(),
		CacheHits:     c.cacheHits.Load(),
		CacheMisses:   c.cacheMisses.Load(),
	}
}

// Reset zeroes every counter.
func (c *Collector) Reset() {
	c.totalRequests.Store(0)
	c.aiRequests.Store(0)
	c.errorCount.Store(0)
	c.tokensUsed.Store(0)
	c.cacheHits.Store(0)
	c.cacheMisses.Store(0)
}

// ResetCache zeroes only the hit/miss counters, used when the response
// cache is cleared.
func (c *Collector) ResetCache() {
	c.cacheHits.Store(0)
	c.cacheMisses.Store(0)
}
