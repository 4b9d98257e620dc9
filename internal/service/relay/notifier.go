package relay

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/store"
)

// Broadcaster delivers a message to every subscriber of a session topic.
type Broadcaster interface {
	Broadcast(sessionID string, message chat.Message)
}

// Notifier synthesizes leave messages when connections drop.
type Notifier struct {
	messages    store.MessageStore
	broadcaster Broadcaster
}

// NewNotifier wires the disconnect notifier.
func NewNotifier(messages store.MessageStore, broadcaster Broadcaster) *Notifier {
	return &Notifier{messages: messages, broadcaster: broadcaster}
}

// NotifyLeave persists and broadcasts a leave message for the given
// user. Connections that never joined carry no attributes; that case is
// a silent no-op, not an error.
func (n *Notifier) NotifyLeave(ctx context.Context, senderName, sessionID string) {
	if senderName == "" || sessionID == "" {
		return
	}

	leave := chat.Message{
		SessionID:  sessionID,
		SenderName: senderName,
		Type:       chat.TypeLeave,
		Content:    fmt.Sprintf("%s left the chat", senderName),
		Timestamp:  time.Now().UTC(),
	}

	saved, err := n.messages.Save(ctx, leave)
	if err != nil {
		log.Printf("[router] failed to persist leave message for %s: %v", senderName, err)
		return
	}

	n.broadcaster.Broadcast(sessionID, saved)
	log.Printf("[router] %s left session %s", senderName, sessionID)
}
