package chat

import "time"

// MessageType classifies a chat message.
type MessageType string

const (
	TypeChat  MessageType = "CHAT"
	TypeJoin  MessageType = "JOIN"
	TypeLeave MessageType = "LEAVE"
	TypeBot   MessageType = "BOT"
)

// Message is a single chat message. ID and Timestamp are assigned when
// the message is persisted.
type Message struct {
	ID             string      `json:"id"`
	SessionID      string      `json:"sessionId"`
	SenderID       string      `json:"senderId"`
	SenderName     string      `json:"senderName"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	Timestamp      time.Time   `json:"timestamp"`
	ProcessedByBot bool        `json:"processedByBot"`
}
