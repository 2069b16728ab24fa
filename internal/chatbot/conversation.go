package chatbot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WelcomeMessage opens every conversation
const WelcomeMessage = "Hello! I'm your Skill Builder AI assistant. How can I help you today?"

// ErrEmptyMessage is returned for blank input
var ErrEmptyMessage = errors.New("message is empty")

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of a conversation transcript
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a chat transcript with the assistant
type Conversation struct {
	ID string

	mu        sync.Mutex
	messages  []Message
	responder *Responder
	now       func() time.Time
}

// NewConversation starts a transcript with the welcome message
func NewConversation(responder *Responder) *Conversation {
	return newConversation(responder, time.Now)
}

func newConversation(responder *Responder, now func() time.Time) *Conversation {
	c := &Conversation{
		ID:        uuid.NewString(),
		responder: responder,
		now:       now,
	}
	c.messages = append(c.messages, c.message(WelcomeMessage, SenderBot))
	return c
}

// Send records the user's message and the assistant's reply
func (c *Conversation) Send(text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, c.message(text, SenderUser))
	reply := c.message(c.responder.Reply(text), SenderBot)
	c.messages = append(c.messages, reply)
	return reply, nil
}

// Messages returns a copy of the transcript
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func (c *Conversation) message(content string, sender Sender) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: c.now(),
	}
}

// Pause waits for d or until ctx is done
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
