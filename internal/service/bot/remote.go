package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/astrellis/botrelay/backend/internal/model/chat"
	"github.com/astrellis/botrelay/backend/internal/service/ai"
)

// UnavailableResponse is the reply content when the remote bot service
// cannot be reached.
const UnavailableResponse = "Sorry, I'm currently unavailable. Please try again later."

// RemoteProcessor forwards messages to a bot service running in a
// separate process, for deployments that split the relay from the bot.
// One pooled client is reused across calls; its timeout matches the
// provider bound so a hung bot service degrades the same way a hung
// provider does.
type RemoteProcessor struct {
	baseURL string
	client  *http.Client
}

// NewRemoteProcessor targets the bot service at baseURL.
func NewRemoteProcessor(baseURL string) *RemoteProcessor {
	return &RemoteProcessor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: ai.GenerateTimeout},
	}
}

// Process posts the message to the remote /api/bot/process endpoint.
// Transport and decode failures are absorbed into a fixed unavailable
// reply, never returned to the caller.
func (p *RemoteProcessor) Process(ctx context.Context, message chat.Message) chat.Message {
	reply, err := p.post(ctx, message)
	if err != nil {
		log.Printf("[bot] remote processing failed: %v", err)
		return NewReply(message.SessionID, UnavailableResponse)
	}
	return reply
}

func (p *RemoteProcessor) post(ctx context.Context, message chat.Message) (chat.Message, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return chat.Message{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/bot/process", bytes.NewReader(payload))
	if err != nil {
		return chat.Message{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return chat.Message{}, fmt.Errorf("call bot service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return chat.Message{}, fmt.Errorf("bot service returned status %d", resp.StatusCode)
	}

	var reply chat.Message
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return chat.Message{}, fmt.Errorf("decode reply: %w", err)
	}
	return reply, nil
}
