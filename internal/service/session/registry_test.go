package session

import (
	"context"
	"testing"

	"github.com/astrellis/botrelay/backend/internal/store"
)

func TestEnsureCreatesSession(t *testing.T) {
	r := NewRegistry(store.NewMemorySessionStore())
	ctx := context.Background()

	created, err := r.Ensure(ctx, "s1", "alice")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if created.ID != "s1" {
		t.Fatalf("expected id s1, got %s", created.ID)
	}
	if !created.BotEnabled {
		t.Fatalf("new sessions must have the bot enabled")
	}
	if !created.Active {
		t.Fatalf("new sessions must be active")
	}
	if len(created.Participants) != 1 || created.Participants[0] != "alice" {
		t.Fatalf("expected participants [alice], got %v", created.Participants)
	}
	if created.CreatedAt.IsZero() || created.LastMessageAt.IsZero() {
		t.Fatalf("expected timestamps set: %+v", created)
	}

	// Must be persisted, not just returned.
	got, err := r.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("expected session persisted: %v", err)
	}
	if got.ID != "s1" {
		t.Fatalf("unexpected persisted session: %+v", got)
	}
}

func TestEnsureReturnsExistingWithoutMerge(t *testing.T) {
	r := NewRegistry(store.NewMemorySessionStore())
	ctx := context.Background()

	first, err := r.Ensure(ctx, "s1", "alice")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	// A later sender does not join the participant list.
	second, err := r.Ensure(ctx, "s1", "bob")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same session back")
	}
	if len(second.Participants) != 1 || second.Participants[0] != "alice" {
		t.Fatalf("participants must not merge, got %v", second.Participants)
	}
}

func TestEnsureWithUnknownSender(t *testing.T) {
	r := NewRegistry(store.NewMemorySessionStore())

	created, err := r.Ensure(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if len(created.Participants) != 0 {
		t.Fatalf("expected empty participants, got %v", created.Participants)
	}
}

func TestTouchUpdatesLastMessageAt(t *testing.T) {
	r := NewRegistry(store.NewMemorySessionStore())
	ctx := context.Background()

	created, err := r.Ensure(ctx, "s1", "alice")
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	if err := r.Touch(ctx, created); err != nil {
		t.Fatalf("touch failed: %v", err)
	}

	got, err := r.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.LastMessageAt.Before(created.LastMessageAt) {
		t.Fatalf("lastMessageAt must move forward")
	}
}
