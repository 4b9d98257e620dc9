package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/store"
)

// Registry fetches session metadata, lazily creating sessions on first
// contact. Participants are captured at creation only; later senders do
// not merge into an existing session.
type Registry struct {
	sessions store.SessionStore
}

// NewRegistry wraps the given session store.
func NewRegistry(sessions store.SessionStore) *Registry {
	return &Registry{sessions: sessions}
}

// Get returns the session by id.
func (r *Registry) Get(ctx context.Context, sessionID string) (chat.Session, error) {
	return r.sessions.Get(ctx, sessionID)
}

// Ensure returns the existing session, or creates and persists a new
// active, bot-enabled one keyed by sessionID. firstSenderName seeds the
// participant list when known.
func (r *Registry) Ensure(ctx context.Context, sessionID, firstSenderName string) (chat.Session, error) {
	existing, err := r.sessions.Get(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrSessionNotFound) {
		return chat.Session{}, err
	}

	var participants []string
	if firstSenderName != "" {
		participants = []string{firstSenderName}
	}

	now := time.Now().UTC()
	created, err := r.sessions.Save(ctx, chat.Session{
		ID:            sessionID,
		Name:          "Chat Session",
		Participants:  participants,
		Active:        true,
		BotEnabled:    true,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	})
	if err != nil {
		return chat.Session{}, err
	}

	log.Printf("[session] created session %s", sessionID)
	return created, nil
}

// Touch updates the session's last-message timestamp.
func (r *Registry) Touch(ctx context.Context, session chat.Session) error {
	session.LastMessageAt = time.Now().UTC()
	_, err := r.sessions.Save(ctx, session)
	return err
}
