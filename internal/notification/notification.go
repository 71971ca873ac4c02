// Package notification renders and delivers the admin request emails.
// Delivery is best-effort: failures are logged and never reach the caller.
package notification

import (
	"context"

	"github.com/google/uuid"
)

type Message struct {
	ID      string   `json:"-"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func NewMessage(from string, to []string, subject, html, text string) Message {
	return Message{
		ID:      uuid.New().String(),
		From:    from,
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
