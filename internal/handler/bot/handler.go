package bot

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/service/ai"
	botservice "github.com/astrellis/botrelay/backend/internal/service/bot"
	"github.com/astrellis/botrelay/backend/internal/service/cache"
	"github.com/astrellis/botrelay/backend/pkg/utils"
)

// Handler is the bot REST surface: synchronous processing for remote
// deployments plus statistics and cache administration.
type Handler struct {
	processor botservice.Processor
	responder *ai.Responder
	cache     *cache.ResponseCache
}

// New creates the bot handler.
func New(processor botservice.Processor, responder *ai.Responder, responseCache *cache.ResponseCache) *Handler {
	return &Handler{processor: processor, responder: responder, cache: responseCache}
}

// RegisterRoutes mounts the bot endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bot", func(r chi.Router) {
		r.Post("/process", h.handleProcess)
		r.Get("/stats", h.handleStats)
		r.Post("/cache/clear", h.handleCacheClear)
		r.Get("/cache/hit-ratio", h.handleCacheHitRatio)
		r.Get("/health", h.handleHealth)
	})
}

// handleProcess runs the cache-then-AI pipeline for a posted message
// and returns the reply. This is the endpoint remote relays call.
func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var message chat.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	log.Printf("[bot] processing message for session %s", message.SessionID)
	reply := h.processor.Process(r.Context(), message)
	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	utils.RespondText(w, http.StatusOK, h.responder.Statistics())
}

func (h *Handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		log.Printf("[bot] cache clear failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	utils.RespondText(w, http.StatusOK, "Cache cleared successfully")
}

func (h *Handler) handleCacheHitRatio(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.cache.HitRatio())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondText(w, http.StatusOK, "Bot Assistant is running")
}
