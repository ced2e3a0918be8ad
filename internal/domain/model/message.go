package model

import "time"

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Conversation struct {
	ID          string   `json:"id"`
	Participant User     `json:"participant"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
	Online      bool     `json:"online"`
}

func (c Conversation) Key() string { return c.ID }
