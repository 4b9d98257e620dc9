package store

import (
	"context"
	"errors"
	"time"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
)

// MessageStore is the durable append-and-query store for chat messages.
type MessageStore interface {
	// Save persists the message, assigning an id when empty and a
	// timestamp when zero, and returns the stored copy.
	Save(ctx context.Context, message chat.Message) (chat.Message, error)
	// Update overwrites a previously saved message by id.
	Update(ctx context.Context, message chat.Message) error
	// ListBySession returns messages for a session in insertion order.
	ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error)
	// ListByTimeRange returns a session's messages with from <= timestamp < to.
	ListByTimeRange(ctx context.Context, sessionID string, from, to time.Time) ([]chat.Message, error)
}

// SessionStore is the durable get/create/update store for sessions.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (chat.Session, error)
	Save(ctx context.Context, session chat.Session) (chat.Session, error)
	// FindByParticipant returns sessions that include the given participant.
	FindByParticipant(ctx context.Context, name string) ([]chat.Session, error)
}
