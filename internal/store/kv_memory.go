package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

type kvEntry struct {
	value    string
	expireAt time.Time
}

func (e kvEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// MemoryKV implements KV with a mutex-guarded map. Expired entries are
// evicted lazily on read.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]kvEntry
	now     func() time.Time
}

// NewMemoryKV returns an empty in-memory KV store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]kvEntry),
		now:     time.Now,
	}
}

// Get returns the value for key if present and unexpired.
func (s *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.expired(s.now()) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key. A non-positive ttl means no expiry.
func (s *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := kvEntry{value: value}
	if ttl > 0 {
		entry.expireAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

// Delete removes the given keys.
func (s *MemoryKV) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// ScanPrefix returns all unexpired keys starting with prefix.
func (s *MemoryKV) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var keys []string
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
