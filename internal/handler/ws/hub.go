package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
)

// client wraps a websocket connection with write serialization;
// gorilla connections do not allow concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks which connections subscribe to which session topic and
// fans broadcasts out to them. It serves human and bot messages alike.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*client]struct{})}
}

func topicFor(sessionID string) string {
	return "session:" + sessionID
}

func (h *Hub) subscribe(sessionID string, c *client) {
	topic := topicFor(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*client]struct{})
	}
	h.topics[topic][c] = struct{}{}
}

func (h *Hub) unsubscribe(sessionID string, c *client) {
	topic := topicFor(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.topics[topic], c)
	if len(h.topics[topic]) == 0 {
		delete(h.topics, topic)
	}
}

// Broadcast delivers the message to every subscriber of the session
// topic. Slow or broken connections are skipped with a log line; they
// are cleaned up when their read loop exits.
func (h *Hub) Broadcast(sessionID string, message chat.Message) {
	h.mu.RLock()
	subscribers := make([]*client, 0, len(h.topics[topicFor(sessionID)]))
	for c := range h.topics[topicFor(sessionID)] {
		subscribers = append(subscribers, c)
	}
	h.mu.RUnlock()

	for _, c := range subscribers {
		if err := c.send(message); err != nil {
			log.Printf("[ws] broadcast to subscriber failed on %s: %v", topicFor(sessionID), err)
		}
	}
}

// SubscriberCount reports the current subscriber count for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topicFor(sessionID)])
}
