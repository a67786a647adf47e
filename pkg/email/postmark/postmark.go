// Package postmark delivers email through Postmark's transactional API.
package postmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/letterdesk/pkg/email"
)

// Config holds Postmark credentials. The account token is optional; it is
// only needed for account-level API calls, which letter delivery never makes.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail  string `env:"POSTMARK_FROM_EMAIL"`
	SenderName   string `env:"POSTMARK_FROM_NAME"`
	ReplyTo      string `env:"POSTMARK_REPLY_TO"`
	Stream       string `env:"POSTMARK_MESSAGE_STREAM" envDefault:"outbound"`
	BaseURL      string `env:"POSTMARK_BASE_URL"`
}

// Validate reports missing credentials as email.ErrInvalidConfig.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServerToken) == "" {
		return fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", email.ErrInvalidConfig)
	}
	if c.SenderEmail == "" {
		return fmt.Errorf("%w: POSTMARK_FROM_EMAIL is required", email.ErrInvalidConfig)
	}
	if !email.ValidAddress(c.SenderEmail) {
		return fmt.Errorf("%w: POSTMARK_FROM_EMAIL must be a valid address", email.ErrInvalidConfig)
	}
	if c.ReplyTo != "" && !email.ValidAddress(c.ReplyTo) {
		return fmt.Errorf("%w: POSTMARK_REPLY_TO must be a valid address", email.ErrInvalidConfig)
	}
	return nil
}

// Sender implements email.Sender and email.Pinger.
type Sender struct {
	client *postmark.Client
	config Config
	from   string
}

// New validates cfg and returns a ready Sender.
func New(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Sender{
		client: client,
		config: cfg,
		from:   email.FormatAddress(cfg.SenderName, cfg.SenderEmail),
	}, nil
}

// Send submits msg. Opens are tracked, links are not: letters carry no
// marketing links worth rewriting.
func (s *Sender) Send(ctx context.Context, msg email.Message) (email.Receipt, error) {
	if err := msg.Validate(); err != nil {
		return email.Receipt{}, err
	}

	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = s.config.ReplyTo
	}

	pm := postmark.Email{
		From:          s.from,
		To:            msg.To,
		ReplyTo:       replyTo,
		Subject:       msg.Subject,
		Tag:           msg.Tag,
		HTMLBody:      msg.HTML,
		TextBody:      msg.Text,
		TrackOpens:    true,
		MessageStream: s.config.Stream,
	}
	for name, value := range msg.Headers {
		pm.Headers = append(pm.Headers, postmark.Header{Name: name, Value: value})
	}
	for _, a := range msg.Attachments {
		pm.Attachments = append(pm.Attachments, postmark.Attachment{
			Name:        a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}

	resp, err := s.client.SendEmail(ctx, pm)
	if err != nil {
		return email.Receipt{}, classify(err)
	}
	if resp.ErrorCode > 0 {
		return email.Receipt{}, fmt.Errorf("%w: postmark error %d: %s", email.ErrRejected, resp.ErrorCode, resp.Message)
	}

	submitted := resp.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	return email.Receipt{MessageID: resp.MessageID, SubmittedAt: submitted}, nil
}

// Ping fetches the server record tied to the server token, which proves the
// token is valid without sending mail.
func (s *Sender) Ping(ctx context.Context) error {
	if _, err := s.client.GetCurrentServer(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: postmark: %v", email.ErrTransport, err)
	}
	return fmt.Errorf("%w: postmark: %v", email.ErrRejected, err)
}
