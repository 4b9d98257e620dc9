package chat

import "time"

// Session is a logical chat room. Sessions are created lazily on the
// first message for an unknown id.
type Session struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Participants  []string  `json:"participants"`
	Active        bool      `json:"active"`
	BotEnabled    bool      `json:"botEnabled"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}
