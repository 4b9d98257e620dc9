package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryKVSetGet(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if value != "v" {
		t.Fatalf("expected v, got %q", value)
	}
}

func TestMemoryKVMiss(t *testing.T) {
	kv := NewMemoryKV()
	if _, ok, err := kv.Get(context.Background(), "missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryKVExpiry(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	now := time.Now()
	kv.now = func() time.Time { return now }

	if err := kv.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	now = now.Add(2 * time.Minute)

	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryKVDelete(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_ = kv.Set(ctx, "a", "1", 0)
	_ = kv.Set(ctx, "b", "2", 0)

	if err := kv.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "a"); ok {
		t.Fatalf("expected a to be deleted")
	}
}

func TestMemoryKVScanPrefix(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_ = kv.Set(ctx, "bot:response:hello", "1", 0)
	_ = kv.Set(ctx, "bot:response:world", "2", 0)
	_ = kv.Set(ctx, "other:key", "3", 0)

	keys, err := kv.ScanPrefix(ctx, "bot:response:")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
}
