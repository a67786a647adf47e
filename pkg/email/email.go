package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Sender submits a message to one email channel and returns the provider's
// receipt. Implementations make exactly one attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// Pinger is implemented by channels that can verify credentials or
// reachability without sending mail.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Message is a single outbound email.
type Message struct {
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html"`
	Text        string            `json:"text,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Tag         string            `json:"tag,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
}

// Attachment is a file sent along with a message. Content holds raw bytes;
// channels encode it as their API requires.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// Receipt is what a channel reports back for an accepted message.
type Receipt struct {
	MessageID   string    `json:"message_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Validate checks the fields every channel needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if !ValidAddress(m.To) {
		return fmt.Errorf("%w: recipient %q is not a valid address", ErrInvalidMessage, m.To)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.HTML) == "" && strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	for _, a := range m.Attachments {
		if a.Filename == "" || len(a.Content) == 0 {
			return fmt.Errorf("%w: attachment needs a filename and content", ErrInvalidMessage)
		}
	}
	return nil
}

// ValidAddress reports whether s is a bare address or a "Name <addr>" form.
func ValidAddress(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

// FormatAddress renders "Name <email>" or just the email when name is empty.
func FormatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}
