// Package message models short guestbook-style messages.
package message

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/contactdesk/backend/internal/domain/shared"
)

// MinWords is the minimum number of words a message must contain
const MinWords = 5

// Message is a stored message
type Message struct {
	ID        int64
	Name      string
	Body      string
	CreatedAt time.Time
}

// Repository persists messages
type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListRecent(ctx context.Context, limit int) ([]Message, error)
}

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// New validates the input and returns a message with trimmed values
func New(name, body string) (*Message, error) {
	name = strings.TrimSpace(name)
	body = strings.TrimSpace(body)
	if name == "" {
		return nil, shared.NewDomainError(shared.ErrValidation.Code, "Name is required")
	}
	if body == "" {
		return nil, shared.NewDomainError(shared.ErrValidation.Code, "Message is required")
	}
	if n := CountWords(body); n < MinWords {
		return nil, shared.NewDomainError(shared.ErrValidation.Code,
			fmt.Sprintf("Message must be at least %d words (currently %d)", MinWords, n))
	}
	return &Message{Name: name, Body: body}, nil
}
