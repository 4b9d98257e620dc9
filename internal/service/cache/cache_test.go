package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/stats"
	"github.com/astrellis/botrelay/backend/internal/store"
)

// failingKV simulates an unavailable cache backend.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend down")
}
func (failingKV) Set(context.Context, string, string, time.Duration) error {
	return errors.New("backend down")
}
func (failingKV) Delete(context.Context, ...string) error { return errors.New("backend down") }
func (failingKV) ScanPrefix(context.Context, string) ([]string, error) {
	return nil, errors.New("backend down")
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" Hello   World ", "hello world"},
		{"hello world", "hello world"},
		{"HELLO\t\nWORLD", "hello world"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	if Normalize(" Hello   World ") != Normalize("hello world") {
		t.Fatalf("expected equal normalized keys")
	}
}

func TestLookupMissThenHit(t *testing.T) {
	collector := stats.NewCollector()
	c := New(store.NewMemoryKV(), collector, time.Hour)
	ctx := context.Background()

	if _, ok := c.Lookup(ctx, "Hi there"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	reply := chat.Message{SessionID: "s1", Type: chat.TypeBot, Content: "hello!"}
	c.Store(ctx, "Hi there", reply)

	got, ok := c.Lookup(ctx, "Hi there")
	if !ok {
		t.Fatalf("expected hit after store")
	}
	if got.Content != "hello!" {
		t.Fatalf("expected cached content, got %q", got.Content)
	}

	if ratio := c.HitRatio(); ratio != 0.5 {
		t.Fatalf("expected hit ratio 0.5, got %f", ratio)
	}
}

func TestLookupCrossSessionMemoization(t *testing.T) {
	collector := stats.NewCollector()
	c := New(store.NewMemoryKV(), collector, time.Hour)
	ctx := context.Background()

	// Stored under one session's message, visible to any other message
	// with the same normalized content.
	reply := chat.Message{SessionID: "s1", Type: chat.TypeBot, Content: "42"}
	c.Store(ctx, "What is THE answer?", reply)

	got, ok := c.Lookup(ctx, "  what is the   answer? ")
	if !ok {
		t.Fatalf("expected cross-session hit")
	}
	if got.Content != "42" {
		t.Fatalf("expected memoized reply, got %q", got.Content)
	}
}

func TestLookupBackendFailureIsMiss(t *testing.T) {
	collector := stats.NewCollector()
	c := New(failingKV{}, collector, time.Hour)

	if _, ok := c.Lookup(context.Background(), "hi"); ok {
		t.Fatalf("expected miss when backend is down")
	}
	if s := collector.Snapshot(); s.CacheMisses != 1 {
		t.Fatalf("expected 1 miss recorded, got %d", s.CacheMisses)
	}
}

func TestStoreBackendFailureIsSwallowed(t *testing.T) {
	c := New(failingKV{}, stats.NewCollector(), time.Hour)
	// Must not panic or surface the error.
	c.Store(context.Background(), "hi", chat.Message{Content: "x"})
}

func TestCorruptEntryIsMiss(t *testing.T) {
	collector := stats.NewCollector()
	kv := store.NewMemoryKV()
	c := New(kv, collector, time.Hour)
	ctx := context.Background()

	_ = kv.Set(ctx, c.Key("hi"), "{not json", time.Hour)

	if _, ok := c.Lookup(ctx, "hi"); ok {
		t.Fatalf("expected corrupt entry to read as miss")
	}
}

func TestClearResetsEntriesAndCounters(t *testing.T) {
	collector := stats.NewCollector()
	c := New(store.NewMemoryKV(), collector, time.Hour)
	ctx := context.Background()

	c.Store(ctx, "hi", chat.Message{Content: "hello"})
	c.Lookup(ctx, "hi")
	c.Lookup(ctx, "nope")

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if ratio := c.HitRatio(); ratio != 0.0 {
		t.Fatalf("expected ratio reset to 0.0, got %f", ratio)
	}
	if _, ok := c.Lookup(ctx, "hi"); ok {
		t.Fatalf("expected entries removed")
	}
}

func TestHitRatioExactCounts(t *testing.T) {
	collector := stats.NewCollector()
	c := New(store.NewMemoryKV(), collector, time.Hour)
	ctx := context.Background()

	c.Store(ctx, "hi", chat.Message{Content: "hello"})
	for i := 0; i < 3; i++ {
		c.Lookup(ctx, "hi")
	}
	c.Lookup(ctx, "unknown")

	if ratio := c.HitRatio(); ratio != 0.75 {
		t.Fatalf("expected 0.75, got %f", ratio)
	}
}
