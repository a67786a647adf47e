// Package relay delivers email through a generic HTTPS relay endpoint.
//
// The relay receives a JSON document with the message fields, authenticates
// the caller with a bearer token and, when a signing secret is configured,
// checks an HMAC signature over the raw body. A 2xx response carries the
// provider message id as {"id": "..."}.
package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/letterdesk/pkg/email"
)

// maxResponseBody caps how much of a relay response is read.
const maxResponseBody = 64 << 10

// Config describes the relay endpoint.
type Config struct {
	URL           string        `env:"RELAY_URL"`
	Token         string        `env:"RELAY_TOKEN"`
	SigningSecret string        `env:"RELAY_SIGNING_SECRET"`
	SenderEmail   string        `env:"RELAY_FROM_EMAIL"`
	SenderName    string        `env:"RELAY_FROM_NAME"`
	Timeout       time.Duration `env:"RELAY_TIMEOUT" envDefault:"15s"`
}

// Validate reports a missing or malformed endpoint as email.ErrInvalidConfig.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: RELAY_URL is required", email.ErrInvalidConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: RELAY_URL: %v", email.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: RELAY_URL must use http or https", email.ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: RELAY_URL host is required", email.ErrInvalidConfig)
	}
	if c.Token == "" {
		return fmt.Errorf("%w: RELAY_TOKEN is required", email.ErrInvalidConfig)
	}
	if c.SenderEmail != "" && !email.ValidAddress(c.SenderEmail) {
		return fmt.Errorf("%w: RELAY_FROM_EMAIL must be a valid address", email.ErrInvalidConfig)
	}
	return nil
}

// Option configures a Sender.
type Option func(*Sender)

// WithHTTPClient replaces the default client. Its Timeout wins over Config.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) {
		if c != nil {
			s.client = c
		}
	}
}

// WithClock sets the time source used for signatures and receipts.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		if now != nil {
			s.now = now
		}
	}
}

// Sender implements email.Sender and email.Pinger.
type Sender struct {
	client *http.Client
	config Config
	from   string
	now    func() time.Time
}

// New validates cfg and returns a ready Sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	s := &Sender{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
		now:    time.Now,
	}
	if cfg.SenderEmail != "" {
		s.from = email.FormatAddress(cfg.SenderName, cfg.SenderEmail)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type payload struct {
	From        string            `json:"from,omitempty"`
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html"`
	Text        string            `json:"text,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Tag         string            `json:"tag,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Attachments []attachment      `json:"attachments,omitempty"`
}

type attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type response struct {
	ID string `json:"id"`
}

// Send posts msg to the relay once.
func (s *Sender) Send(ctx context.Context, msg email.Message) (email.Receipt, error) {
	if err := msg.Validate(); err != nil {
		return email.Receipt{}, err
	}

	p := payload{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		Tag:     msg.Tag,
		Headers: msg.Headers,
	}
	for _, a := range msg.Attachments {
		p.Attachments = append(p.Attachments, attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	body, err := json.Marshal(p)
	if err != nil {
		return email.Receipt{}, fmt.Errorf("%w: %w", email.ErrInvalidMessage, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return email.Receipt{}, fmt.Errorf("%w: %w", email.ErrInvalidConfig, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.Token)
	req.Header.Set("User-Agent", "letterdesk-relay/1.0")

	now := s.now()
	if s.config.SigningSecret != "" {
		Sign(s.config.SigningSecret, body, now).Apply(req.Header)
	}

	respBody, err := s.do(req)
	if err != nil {
		return email.Receipt{}, err
	}

	var r response
	if err := json.Unmarshal(respBody, &r); err != nil {
		return email.Receipt{}, fmt.Errorf("%w: relay: malformed response: %v", email.ErrRejected, err)
	}
	if r.ID == "" {
		return email.Receipt{}, fmt.Errorf("%w: relay: response carries no message id", email.ErrRejected)
	}

	return email.Receipt{MessageID: r.ID, SubmittedAt: now}, nil
}

// Ping issues GET <url>/health with the bearer token.
func (s *Sender) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(s.config.URL, "/")+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", email.ErrInvalidConfig, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.Token)
	_, err = s.do(req)
	return err
}

func (s *Sender) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := strings.TrimSpace(strings.ReplaceAll(string(body), "\n", " "))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: relay returned status %d: %s", email.ErrRejected, resp.StatusCode, text)
	}
	return body, nil
}

func classify(err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: relay: %w", email.ErrTransport, err)
	}
	return fmt.Errorf("%w: relay: %w", email.ErrRejected, err)
}
