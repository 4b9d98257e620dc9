package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	botHandler "github.com/astrellis/botrelay/backend/internal/handler/bot"
	historyHandler "github.com/astrellis/botrelay/backend/internal/handler/history"
	"github.com/astrellis/botrelay/backend/internal/handler/ws"
	middlewarePkg "github.com/astrellis/botrelay/backend/internal/middleware"
	"github.com/astrellis/botrelay/backend/internal/service/ai"
	botservice "github.com/astrellis/botrelay/backend/internal/service/bot"
	"github.com/astrellis/botrelay/backend/internal/service/cache"
	"github.com/astrellis/botrelay/backend/internal/service/relay"
	"github.com/astrellis/botrelay/backend/internal/service/session"
	"github.com/astrellis/botrelay/backend/internal/store"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Hub       *ws.Hub
	Router    *relay.Router
	Notifier  *relay.Notifier
	Processor botservice.Processor
	Responder *ai.Responder
	Cache     *cache.ResponseCache
	Messages  store.MessageStore
	Sessions  *session.Registry
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	wsHandler := ws.New(deps.Hub, deps.Router, deps.Notifier)
	bot := botHandler.New(deps.Processor, deps.Responder, deps.Cache)
	history := historyHandler.New(deps.Messages, deps.Sessions)

	r.Route("/api", func(api chi.Router) {
		wsHandler.RegisterRoutes(api)
		bot.RegisterRoutes(api)
		history.RegisterRoutes(api)
	})

	return r
}
