package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/service/relay"
)

// inboundEnvelope carries one client action over the socket. "chat"
// and "join" are the two inbound addresses of a session.
type inboundEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// connState is the connection's attribute bag. handleJoin stashes the
// sender's identity here so a disconnect can synthesize a leave message.
type connState struct {
	senderName string
	sessionID  string
}

// Handler upgrades chat connections and feeds inbound messages to the
// relay router.
type Handler struct {
	hub      *Hub
	router   *relay.Router
	notifier *relay.Notifier
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(hub *Hub, router *relay.Router, notifier *relay.Notifier) *Handler {
	return &Handler{
		hub:      hub,
		router:   router,
		notifier: notifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.hub.subscribe(sessionID, c)
	log.Printf("[ws] connection opened for session %s", sessionID)

	state := &connState{}
	defer func() {
		h.hub.unsubscribe(sessionID, c)
		conn.Close()
		// The request context is gone once the connection drops.
		h.notifier.NotifyLeave(context.Background(), state.senderName, state.sessionID)
		log.Printf("[ws] connection closed for session %s", sessionID)
	}()

	for {
		var envelope inboundEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed for session %s: %v", sessionID, err)
			}
			return
		}

		h.handleEnvelope(r.Context(), sessionID, c, state, envelope)
	}
}

func (h *Handler) handleEnvelope(ctx context.Context, sessionID string, c *client, state *connState, envelope inboundEnvelope) {
	var message chat.Message
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &message); err != nil {
			h.sendError(c, "invalid message payload")
			return
		}
	}

	switch envelope.Type {
	case "chat":
		if message.Type == "" {
			message.Type = chat.TypeChat
		}
		saved, err := h.router.HandleChat(ctx, sessionID, message)
		if err != nil {
			log.Printf("[ws] chat handling failed for session %s: %v", sessionID, err)
			h.sendError(c, "failed to deliver message")
			return
		}
		h.hub.Broadcast(sessionID, saved)

	case "join":
		saved, err := h.router.HandleJoin(ctx, sessionID, message)
		if err != nil {
			log.Printf("[ws] join handling failed for session %s: %v", sessionID, err)
			h.sendError(c, "failed to join session")
			return
		}
		state.senderName = saved.SenderName
		state.sessionID = sessionID
		h.hub.Broadcast(sessionID, saved)

	default:
		h.sendError(c, "unknown message type")
	}
}

func (h *Handler) sendError(c *client, message string) {
	if err := c.send(errorEnvelope{Type: "error", Error: message}); err != nil {
		log.Printf("[ws] failed to send error frame: %v", err)
	}
}
