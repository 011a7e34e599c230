package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one exchanged utterance in a conversation. IsError marks
// placeholder entries synthesized when a reply could not be obtained;
// those are always sender "bot".
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"isError,omitempty"`
}

// NewMessage stamps a fresh message with a unique id and the creation
// instant. Array position stays the authoritative ordering; timestamps
// are non-decreasing because they are assigned when the message is made.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorMessage builds the bot-side placeholder shown when a send fails.
func NewErrorMessage(text string) Message {
	msg := NewMessage(SenderBot, text)
	msg.IsError = true
	return msg
}
