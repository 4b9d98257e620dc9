package history

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/astrellis/botrelay/backend/internal/service/session"
	"github.com/astrellis/botrelay/backend/internal/store"
	"github.com/astrellis/botrelay/backend/pkg/utils"
)

// Handler serves message transcripts and session metadata.
type Handler struct {
	messages store.MessageStore
	sessions *session.Registry
}

// New creates the history handler.
func New(messages store.MessageStore, sessions *session.Registry) *Handler {
	return &Handler{messages: messages, sessions: sessions}
}

// RegisterRoutes mounts the history endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history/{sessionID}", h.handleHistory)
	r.Get("/history/{sessionID}/range", h.handleHistoryRange)
	r.Get("/sessions/{sessionID}", h.handleSession)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.messages.ListBySession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleHistoryRange(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "from must be an RFC3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "to must be an RFC3339 timestamp")
		return
	}

	messages, err := h.messages.ListByTimeRange(r.Context(), sessionID, from, to)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sess)
}
