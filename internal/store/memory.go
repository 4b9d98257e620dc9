package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
)

// MemoryMessageStore implements MessageStore with an in-memory map,
// suitable for tests and single-node deployments.
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

// NewMemoryMessageStore returns an empty message store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{messages: make(map[string][]chat.Message)}
}

// Save appends the message to its session history.
func (s *MemoryMessageStore) Save(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// Update overwrites a stored message by id.
func (s *MemoryMessageStore) Update(_ context.Context, message chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.messages[message.SessionID]
	for i := range history {
		if history[i].ID == message.ID {
			history[i] = message
			return nil
		}
	}
	return ErrMessageNotFound
}

// ListBySession returns a copy of the session's messages.
func (s *MemoryMessageStore) ListBySession(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return slices.Clone(history), nil
}

// ListByTimeRange filters a session's messages by from <= timestamp < to.
func (s *MemoryMessageStore) ListByTimeRange(_ context.Context, sessionID string, from, to time.Time) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	filtered := make([]chat.Message, 0, len(history))
	for _, msg := range history {
		if !msg.Timestamp.Before(from) && msg.Timestamp.Before(to) {
			filtered = append(filtered, msg)
		}
	}
	return filtered, nil
}

// MemorySessionStore implements SessionStore with an in-memory map.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
}

// NewMemorySessionStore returns an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]chat.Session)}
}

// Get retrieves a session by identifier.
func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Save stores the session, assigning an id when empty.
func (s *MemorySessionStore) Save(_ context.Context, session chat.Session) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	s.sessions[session.ID] = session
	return session, nil
}

// FindByParticipant returns sessions containing the given participant.
func (s *MemorySessionStore) FindByParticipant(_ context.Context, name string) ([]chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []chat.Session
	for _, session := range s.sessions {
		if slices.Contains(session.Participants, name) {
			found = append(found, session)
		}
	}
	return found, nil
}
