// Package resend delivers email through the Resend HTTP API.
package resend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/letterdesk/pkg/email"
)

// Config holds Resend credentials and the sender identity.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL" envDefault:"onboarding@resend.dev"`
	SenderName  string `env:"RESEND_FROM_NAME"`
	BaseURL     string `env:"RESEND_BASE_URL"`
}

// Validate reports missing credentials as email.ErrInvalidConfig.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: RESEND_API_KEY is required", email.ErrInvalidConfig)
	}
	if !email.ValidAddress(c.SenderEmail) {
		return fmt.Errorf("%w: RESEND_FROM_EMAIL must be a valid address", email.ErrInvalidConfig)
	}
	if c.BaseURL != "" {
		if _, err := url.Parse(c.BaseURL); err != nil {
			return fmt.Errorf("%w: RESEND_BASE_URL: %v", email.ErrInvalidConfig, err)
		}
	}
	return nil
}

// Sender implements email.Sender on top of resend-go.
type Sender struct {
	client *resend.Client
	from   string
	now    func() time.Time
}

// New validates cfg and returns a ready Sender.
func New(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, _ := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		client.BaseURL = u
	}

	return &Sender{
		client: client,
		from:   email.FormatAddress(cfg.SenderName, cfg.SenderEmail),
		now:    time.Now,
	}, nil
}

func (s *Sender) Send(ctx context.Context, msg email.Message) (email.Receipt, error) {
	if err := msg.Validate(); err != nil {
		return email.Receipt{}, err
	}

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		Headers: msg.Headers,
	}
	if msg.Tag != "" {
		req.Tags = []resend.Tag{{Name: "category", Value: msg.Tag}}
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return email.Receipt{}, classify(err)
	}
	if resp == nil || resp.Id == "" {
		return email.Receipt{}, fmt.Errorf("%w: resend returned no message id", email.ErrRejected)
	}

	return email.Receipt{MessageID: resp.Id, SubmittedAt: s.now()}, nil
}

// classify separates network failures from API errors. resend-go returns
// the provider's error message verbatim for non-2xx responses.
func classify(err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: resend: %v", email.ErrTransport, err)
	}
	return fmt.Errorf("%w: resend: %v", email.ErrRejected, err)
}
