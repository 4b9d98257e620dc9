package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/astrellis/botrelay/backend/internal/config"
	"github.com/astrellis/botrelay/backend/internal/handler"
	"github.com/astrellis/botrelay/backend/internal/handler/ws"
	"github.com/astrellis/botrelay/backend/internal/service/ai"
	"github.com/astrellis/botrelay/backend/internal/service/bot"
	"github.com/astrellis/botrelay/backend/internal/service/cache"
	"github.com/astrellis/botrelay/backend/internal/service/relay"
	"github.com/astrellis/botrelay/backend/internal/service/session"
	"github.com/astrellis/botrelay/backend/internal/stats"
	"github.com/astrellis/botrelay/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	collector := stats.NewCollector()

	// Stores: durable backends live behind these interfaces; the memory
	// implementations serve single-node deployments.
	messages := store.NewMemoryMessageStore()
	sessions := store.NewMemorySessionStore()

	kv := newKV(ctx, cfg.Cache)
	responseCache := cache.New(kv, collector, cfg.Cache.TTL)

	// Initialize the AI responder; without credentials it serves canned
	// degraded-mode answers and never touches the network.
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing in degraded mode with canned responses")
			chatModel = nil
		} else {
			log.Println("AI responder initialized successfully")
		}
	} else {
		log.Println("provider credentials not configured, running in degraded mode")
	}
	responder := ai.NewResponder(chatModel, collector, ai.WithSystemPrompt(cfg.AI.SystemPrompt))

	var processor bot.Processor
	if cfg.Bot.ServiceURL != "" {
		log.Printf("bot processing delegated to remote service at %s", cfg.Bot.ServiceURL)
		processor = bot.NewRemoteProcessor(cfg.Bot.ServiceURL)
	} else {
		processor = bot.NewLocalProcessor(responseCache, responder, collector)
	}

	hub := ws.NewHub()
	orchestrator := bot.NewOrchestrator(processor, messages, hub, cfg.Bot.Workers, cfg.Bot.QueueSize)
	orchestrator.Start(ctx)
	defer orchestrator.Stop()

	registry := session.NewRegistry(sessions)
	router := handler.NewRouter(handler.Deps{
		Hub:       hub,
		Router:    relay.NewRouter(messages, registry, orchestrator),
		Notifier:  relay.NewNotifier(messages, hub),
		Processor: processor,
		Responder: responder,
		Cache:     responseCache,
		Messages:  messages,
		Sessions:  registry,
	})

	startServer(ctx, cfg.Server, router)
}

// newKV picks the cache backend: Redis when configured, else memory.
func newKV(ctx context.Context, cfg config.CacheConfig) store.KV {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, using in-memory response cache")
		return store.NewMemoryKV()
	}

	kv, err := store.NewRedisKV(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("warning: %v", err)
		log.Println("falling back to in-memory response cache")
		return store.NewMemoryKV()
	}

	log.Printf("response cache backed by redis at %s", cfg.RedisAddr)
	return kv
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat relay backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
