package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/service/session"
	"github.com/astrellis/botrelay/backend/internal/store"
)

func setupRouter(t *testing.T) (*chi.Mux, *store.MemoryMessageStore, *session.Registry) {
	t.Helper()
	messages := store.NewMemoryMessageStore()
	sessions := session.NewRegistry(store.NewMemorySessionStore())
	handler := New(messages, sessions)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, messages, sessions
}

func TestHistoryReturnsMessages(t *testing.T) {
	r, messages, _ := setupRouter(t)
	ctx := context.Background()

	_, _ = messages.Save(ctx, chat.Message{SessionID: "s1", Content: "a", Type: chat.TypeChat})
	_, _ = messages.Save(ctx, chat.Message{SessionID: "s1", Content: "b", Type: chat.TypeBot})

	req := httptest.NewRequest(http.MethodGet, "/history/s1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var got []chat.Message
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/history/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHistoryRangeValidation(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/history/s1/range?from=not-a-time&to=also-not", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSessionLookup(t *testing.T) {
	r, _, sessions := setupRouter(t)

	if _, err := sessions.Ensure(context.Background(), "s1", "alice"); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var got chat.Session
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != "s1" || !got.BotEnabled {
		t.Fatalf("unexpected session: %+v", got)
	}
}
