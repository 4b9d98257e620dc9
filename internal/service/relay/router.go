package relay

import (
	"context"
	"log"
	"time"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/service/session"
	"github.com/astrellis/botrelay/backend/internal/store"
)

// Dispatcher hands a message to the asynchronous bot pipeline.
type Dispatcher interface {
	Enqueue(message chat.Message) bool
}

// Router is the transport-facing message relay. Its entry points run on
// the transport's per-message goroutine and never block on bot work:
// bot generation is observable only through a later broadcast.
type Router struct {
	messages   store.MessageStore
	sessions   *session.Registry
	dispatcher Dispatcher
}

// NewRouter wires the relay over its collaborators.
func NewRouter(messages store.MessageStore, sessions *session.Registry, dispatcher Dispatcher) *Router {
	return &Router{messages: messages, sessions: sessions, dispatcher: dispatcher}
}

// HandleChat stamps and persists an inbound chat message, updates the
// session, and triggers async bot dispatch when the session has the bot
// enabled. The persisted message is returned for immediate broadcast.
// A failed primary persist is fatal to the request: nothing is
// broadcast and the error surfaces to the transport.
func (r *Router) HandleChat(ctx context.Context, sessionID string, message chat.Message) (chat.Message, error) {
	message.SessionID = sessionID
	message.Timestamp = time.Now().UTC()

	saved, err := r.messages.Save(ctx, message)
	if err != nil {
		return chat.Message{}, err
	}

	sess, err := r.sessions.Ensure(ctx, sessionID, message.SenderName)
	if err != nil {
		log.Printf("[router] failed to ensure session %s: %v", sessionID, err)
		return saved, nil
	}
	if err := r.sessions.Touch(ctx, sess); err != nil {
		log.Printf("[router] failed to touch session %s: %v", sessionID, err)
	}

	if sess.BotEnabled && saved.Type == chat.TypeChat {
		if !r.dispatcher.Enqueue(saved) {
			log.Printf("[router] bot dispatch rejected for message %s", saved.ID)
		}
	}

	return saved, nil
}

// HandleJoin stamps and persists a join announcement and returns it for
// broadcast. The transport layer stashes (senderName, sessionID) on the
// connection so a later disconnect can synthesize a leave message.
func (r *Router) HandleJoin(ctx context.Context, sessionID string, message chat.Message) (chat.Message, error) {
	message.SessionID = sessionID
	message.Type = chat.TypeJoin
	message.Timestamp = time.Now().UTC()

	return r.messages.Save(ctx, message)
}
