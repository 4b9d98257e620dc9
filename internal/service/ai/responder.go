package ai

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/astrellis/botrelay/backend/internal/stats"
)

// GenerateTimeout bounds a single provider call. On expiry the pending
// call is abandoned and the fallback path runs immediately.
const GenerateTimeout = 10 * time.Second

// ApologyResponse is returned on any transient provider failure.
const ApologyResponse = "I'm sorry, I'm having trouble processing your request right now. Please try again later."

const defaultSystemPrompt = "You are a helpful assistant in a group chat. " +
	"Answer the user's message concisely and stay on topic."

// cannedResponses are served in degraded mode, chosen uniformly at
// random. Degraded mode means no valid provider credential is
// configured or the provider rejected ours.
var cannedResponses = [10]string{
	"I'm running in offline mode right now, so I can only offer canned answers.",
	"That's an interesting question! Unfortunately my AI brain is taking a break.",
	"I'd love to help with that, but I'm currently disconnected from my knowledge source.",
	"Hmm, let me think... actually, I can't think much without my AI provider configured.",
	"Good point! I'll have a proper answer once my operator plugs in an API key.",
	"I hear you loud and clear, but my answers are limited while I'm offline.",
	"My crystal ball is cloudy today. Try again once the AI service is back.",
	"Noted! I'm keeping the conversation going even though my AI is unavailable.",
	"I wish I could say something smarter, but I'm in degraded mode at the moment.",
	"Thanks for your patience - full AI responses will return when I'm reconnected.",
}

// Responder calls the text-generation provider with a bounded timeout
// and absorbs every failure into fallback content. Generate never
// returns an error to its caller.
type Responder struct {
	chatModel    model.BaseChatModel
	stats        *stats.Collector
	systemPrompt string
	randInt      func(n int) int
}

// Option customizes a Responder.
type Option func(*Responder)

// WithRandom replaces the canned-answer selection source, letting tests
// assert uniformity and determinism.
func WithRandom(randInt func(n int) int) Option {
	return func(r *Responder) { r.randInt = randInt }
}

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(r *Responder) {
		if strings.TrimSpace(prompt) != "" {
			r.systemPrompt = prompt
		}
	}
}

// NewResponder wraps the given chat model. A nil chatModel puts the
// responder in degraded mode: canned answers only, no network.
func NewResponder(chatModel model.BaseChatModel, collector *stats.Collector, opts ...Option) *Responder {
	r := &Responder{
		chatModel:    chatModel,
		stats:        collector,
		systemPrompt: defaultSystemPrompt,
		randInt:      rand.Intn,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Degraded reports whether the responder has no provider to call.
func (r *Responder) Degraded() bool {
	return r.chatModel == nil
}

// Generate produces reply content for the prompt. The second return
// value reports whether the content came from the provider and is safe
// to cache; fallback content is never cached.
func (r *Responder) Generate(ctx context.Context, prompt string) (string, bool) {
	if r.Degraded() {
		r.stats.IncrErrors()
		return r.cannedResponse(), false
	}

	ctx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()

	messages := []*schema.Message{
		schema.SystemMessage(r.systemPrompt),
		schema.UserMessage(prompt),
	}

	response, err := r.chatModel.Generate(ctx, messages)
	if err != nil {
		r.stats.IncrErrors()
		if isAuthError(err) {
			log.Printf("[ai] provider rejected credentials: %v", err)
			return r.cannedResponse(), false
		}
		log.Printf("[ai] generate failed: %v", err)
		return ApologyResponse, false
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		r.stats.IncrErrors()
		log.Printf("[ai] provider returned empty response")
		return ApologyResponse, false
	}

	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		r.stats.AddTokens(int64(response.ResponseMeta.Usage.TotalTokens))
	}
	return response.Content, true
}

// Statistics renders a human-readable snapshot of the pipeline counters.
func (r *Responder) Statistics() string {
	snapshot := r.stats.Snapshot()
	return fmt.Sprintf(
		"Total requests: %d\nAI requests: %d\nCached responses: %d\nCache hit ratio: %.2f\nErrors: %d\nTokens used: %d",
		snapshot.TotalRequests,
		snapshot.AIRequests,
		snapshot.CachedResponses(),
		r.stats.CacheHitRatio(),
		snapshot.ErrorCount,
		snapshot.TokensUsed,
	)
}

func (r *Responder) cannedResponse() string {
	return cannedResponses[r.randInt(len(cannedResponses))]
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "invalid api key")
}
