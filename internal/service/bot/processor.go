package bot

import (
	"context"
	"time"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/service/ai"
	"github.com/astrellis/botrelay/backend/internal/service/cache"
	"github.com/astrellis/botrelay/backend/internal/stats"
)

const (
	// BotSenderID and BotSenderName identify the assistant on every reply.
	BotSenderID   = "bot"
	BotSenderName = "Bot Assistant"
)

// Processor turns a chat message into a bot reply. It never fails: any
// internal error surfaces only as content variation in the reply.
type Processor interface {
	Process(ctx context.Context, message chat.Message) chat.Message
}

// LocalProcessor answers from the response cache when possible and
// falls through to the AI responder on a miss.
type LocalProcessor struct {
	cache     *cache.ResponseCache
	responder *ai.Responder
	stats     *stats.Collector
}

// NewLocalProcessor wires the in-process cache-then-AI pipeline.
func NewLocalProcessor(responseCache *cache.ResponseCache, responder *ai.Responder, collector *stats.Collector) *LocalProcessor {
	return &LocalProcessor{cache: responseCache, responder: responder, stats: collector}
}

// Process resolves the reply content for message. On a cache hit the
// cached reply content is reused verbatim and the provider is not
// called. On a miss the responder runs and a genuine provider answer
// is cached for later; fallback content is never cached.
func (p *LocalProcessor) Process(ctx context.Context, message chat.Message) chat.Message {
	p.stats.IncrTotalRequests()

	if cached, ok := p.cache.Lookup(ctx, message.Content); ok {
		return NewReply(message.SessionID, cached.Content)
	}

	p.stats.IncrAIRequests()
	content, cacheable := p.responder.Generate(ctx, message.Content)

	reply := NewReply(message.SessionID, content)
	if cacheable {
		p.cache.Store(ctx, message.Content, reply)
	}
	return reply
}

// NewReply builds an unpersisted bot reply for the given session.
func NewReply(sessionID, content string) chat.Message {
	return chat.Message{
		SessionID:  sessionID,
		SenderID:   BotSenderID,
		SenderName: BotSenderName,
		Type:       chat.TypeBot,
		Content:    content,
		Timestamp:  time.Now().UTC(),
	}
}
