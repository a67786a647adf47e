package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/letterdesk/pkg/email"
	"github.com/dmitrymomot/letterdesk/pkg/logger"
	"github.com/dmitrymomot/letterdesk/svc/export"
	"github.com/dmitrymomot/letterdesk/svc/intern"
	"github.com/dmitrymomot/letterdesk/svc/letter"
)

// ErrMissingRecipient means the intern has no email address on file.
var ErrMissingRecipient = errors.New("dispatch: recipient email is required")

// AttachNone disables attachments in Config.AttachFormat.
const AttachNone = "none"

// Config controls what is sent. It is passed explicitly; the client reads no
// environment on its own.
type Config struct {
	// Channel is the name reported in results and audit rows.
	Channel string `env:"EMAIL_CHANNEL" envDefault:"file"`
	// TestRecipient receives the diagnostic message.
	TestRecipient string `env:"DISPATCH_TEST_RECIPIENT"`
	// AttachFormat is pdf, html or none.
	AttachFormat string `env:"DISPATCH_ATTACH_FORMAT" envDefault:"pdf"`
	ReplyTo      string `env:"DISPATCH_REPLY_TO"`
}

// Client renders letters and submits them through one channel. Each call
// makes at most one send attempt.
type Client struct {
	open     Opener
	check    func() error
	renderer *letter.Renderer
	exporter *export.Exporter
	cfg      Config
	now      func() time.Time
	log      *slog.Logger

	mu     sync.Mutex
	sender email.Sender
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides time.Now for SentAt, CheckedAt and the letter
// reference time.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithConfigCheck sets a side-effect-free check used by Configured instead of
// opening the channel, usually ChannelConfig.Validate.
func WithConfigCheck(check func() error) Option {
	return func(c *Client) {
		if check != nil {
			c.check = check
		}
	}
}

// WithExporter sets the exporter used for attachments.
func WithExporter(e *export.Exporter) Option {
	return func(c *Client) {
		if e != nil {
			c.exporter = e
		}
	}
}

// New creates a Client. The channel is not opened until first use.
func New(open Opener, renderer *letter.Renderer, cfg Config, opts ...Option) *Client {
	c := &Client{
		open:     open,
		renderer: renderer,
		exporter: export.New(),
		cfg:      cfg,
		now:      time.Now,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("dispatch"), logger.Channel(c.cfg.Channel))
	return c
}

// Channel returns the configured channel name.
func (c *Client) Channel() string {
	return c.cfg.Channel
}

// channel returns the cached sender or opens it.
func (c *Client) channel(ctx context.Context) (email.Sender, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sender != nil {
		return c.sender, nil
	}
	if c.open == nil {
		return nil, fmt.Errorf("%w: no channel configured", email.ErrInvalidConfig)
	}
	s, err := c.open(ctx)
	if err != nil {
		if !errors.Is(err, email.ErrInvalidConfig) {
			err = errors.Join(email.ErrInvalidConfig, err)
		}
		return nil, err
	}
	c.sender = s
	return s, nil
}

// Configured reports whether the channel is usable. An opened channel
// counts; otherwise the config check decides, and only without one is the
// channel opened.
func (c *Client) Configured(ctx context.Context) bool {
	c.mu.Lock()
	opened := c.sender != nil
	c.mu.Unlock()

	switch {
	case opened:
		return true
	case c.check != nil:
		return c.open != nil && c.check() == nil
	}
	_, err := c.channel(ctx)
	return err == nil
}

// SendLetter renders the letter of kind for rec and submits it once.
// Validation problems are reported before the channel is touched.
func (c *Client) SendLetter(ctx context.Context, kind letter.Kind, rec intern.Record) Result {
	now := c.now()

	l, err := c.renderer.Render(kind, rec, now)
	if err != nil {
		return c.fail(ctx, err)
	}
	to := strings.TrimSpace(rec.Email)
	if to == "" {
		return c.fail(ctx, ErrMissingRecipient)
	}

	msg := email.Message{
		To:      to,
		Subject: l.Subject,
		HTML:    l.HTML,
		Text:    l.Text,
		ReplyTo: c.cfg.ReplyTo,
		Tag:     string(kind) + "-letter",
		Headers: map[string]string{"X-Letter-Kind": string(kind)},
	}
	if att, err := c.attachment(l, rec.Name); err != nil {
		return c.fail(ctx, err)
	} else if att != nil {
		msg.Attachments = []email.Attachment{*att}
	}
	if err := msg.Validate(); err != nil {
		return c.fail(ctx, err)
	}

	return c.submit(ctx, msg, now,
		logger.InternID(rec.ID), logger.OwnerID(rec.OwnerID), logger.LetterKind(string(kind)))
}

// TestChannel sends the diagnostic message to Config.TestRecipient.
func (c *Client) TestChannel(ctx context.Context) Result {
	now := c.now()

	if strings.TrimSpace(c.cfg.TestRecipient) == "" {
		return c.fail(ctx, fmt.Errorf("%w: DISPATCH_TEST_RECIPIENT is not set", email.ErrInvalidConfig))
	}
	l, err := c.renderer.RenderDiagnostic(now)
	if err != nil {
		return c.fail(ctx, err)
	}

	msg := email.Message{
		To:      c.cfg.TestRecipient,
		Subject: l.Subject,
		HTML:    l.HTML,
		Text:    l.Text,
		Tag:     "channel-test",
	}
	return c.submit(ctx, msg, now, logger.Event("channel_test"))
}

// CheckChannelHealth opens the channel and pings it when supported. It never
// sends mail.
func (c *Client) CheckChannelHealth(ctx context.Context) HealthResult {
	res := HealthResult{Channel: c.cfg.Channel, CheckedAt: c.now()}

	s, err := c.channel(ctx)
	if err != nil {
		res.ErrorKind, res.ErrorDetail = Classify(err), err.Error()
		return res
	}
	res.Configured = true

	p, ok := s.(email.Pinger)
	if !ok {
		res.Reachable = true
		return res
	}
	res.Probed = true
	if err := p.Ping(ctx); err != nil {
		res.ErrorKind, res.ErrorDetail = Classify(err), err.Error()
		c.log.WarnContext(ctx, "channel health check failed", logger.Error(err))
		return res
	}
	res.Reachable = true
	return res
}

func (c *Client) attachment(l *letter.Letter, name string) (*email.Attachment, error) {
	format := strings.ToLower(strings.TrimSpace(c.cfg.AttachFormat))
	if format == "" || format == AttachNone {
		return nil, nil
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: DISPATCH_ATTACH_FORMAT: %v", email.ErrInvalidConfig, err)
	}
	doc, err := c.exporter.Export(l, name, f)
	if err != nil {
		return nil, err
	}
	return &email.Attachment{Filename: doc.Filename, ContentType: doc.ContentType, Content: doc.Data}, nil
}

func (c *Client) submit(ctx context.Context, msg email.Message, now time.Time, attrs ...any) Result {
	s, err := c.channel(ctx)
	if err != nil {
		return c.fail(ctx, err, attrs...)
	}

	receipt, err := s.Send(ctx, msg)
	if err != nil {
		return c.fail(ctx, err, attrs...)
	}

	sentAt := receipt.SubmittedAt
	if sentAt.IsZero() {
		sentAt = now
	}
	c.log.InfoContext(ctx, "letter dispatched", append(attrs, logger.MessageID(receipt.MessageID))...)
	return Result{
		Success:           true,
		Channel:           c.cfg.Channel,
		ProviderMessageID: receipt.MessageID,
		SentAt:            sentAt,
	}
}

func (c *Client) fail(ctx context.Context, err error, attrs ...any) Result {
	kind := Classify(err)
	level := slog.LevelError
	if kind == KindValidation {
		level = slog.LevelWarn
	}
	c.log.Log(ctx, level, "letter dispatch failed", append(attrs, logger.Error(err), slog.String("error_kind", string(kind)))...)
	return Result{
		Channel:     c.cfg.Channel,
		ErrorKind:   kind,
		ErrorDetail: err.Error(),
		err:         err,
	}
}
