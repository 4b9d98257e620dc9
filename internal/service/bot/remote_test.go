package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
)

func TestRemoteProcessorSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bot/process" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var incoming chat.Message
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			t.Errorf("decode failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(NewReply(incoming.SessionID, "remote answer"))
	}))
	defer srv.Close()

	p := NewRemoteProcessor(srv.URL)
	reply := p.Process(context.Background(), chat.Message{SessionID: "s1", Content: "hi"})

	if reply.Content != "remote answer" {
		t.Fatalf("expected remote answer, got %q", reply.Content)
	}
	if reply.SessionID != "s1" {
		t.Fatalf("expected session s1, got %s", reply.SessionID)
	}
}

func TestRemoteProcessorServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewRemoteProcessor(srv.URL)
	reply := p.Process(context.Background(), chat.Message{SessionID: "s1", Content: "hi"})

	if reply.Content != UnavailableResponse {
		t.Fatalf("expected unavailable fallback, got %q", reply.Content)
	}
	if reply.Type != chat.TypeBot {
		t.Fatalf("fallback must still be a BOT message")
	}
}

func TestRemoteProcessorUnreachableFallsBack(t *testing.T) {
	p := NewRemoteProcessor("http://127.0.0.1:1")
	reply := p.Process(context.Background(), chat.Message{SessionID: "s1", Content: "hi"})

	if reply.Content != UnavailableResponse {
		t.Fatalf("expected unavailable fallback, got %q", reply.Content)
	}
}

func TestRemoteProcessorMalformedReplyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	p := NewRemoteProcessor(srv.URL)
	reply := p.Process(context.Background(), chat.Message{SessionID: "s1", Content: "hi"})

	if reply.Content != UnavailableResponse {
		t.Fatalf("expected unavailable fallback, got %q", reply.Content)
	}
}
