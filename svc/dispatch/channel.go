package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrymomot/letterdesk/pkg/email"
	"github.com/dmitrymomot/letterdesk/pkg/email/postmark"
	"github.com/dmitrymomot/letterdesk/pkg/email/relay"
	"github.com/dmitrymomot/letterdesk/pkg/email/resend"
)

// Channel names accepted by ChannelConfig.Name.
const (
	ChannelResend   = "resend"
	ChannelPostmark = "postmark"
	ChannelRelay    = "relay"
	ChannelFile     = "file"
)

// Opener builds the configured channel. The client calls it on first use
// and again after a failed attempt.
type Opener func(ctx context.Context) (email.Sender, error)

// ChannelConfig selects exactly one email channel and carries the
// credentials of every supported provider.
type ChannelConfig struct {
	Name     string `env:"EMAIL_CHANNEL" envDefault:"file"`
	FileDir  string `env:"EMAIL_FILE_DIR" envDefault:"./tmp/mail"`
	Resend   resend.Config
	Postmark postmark.Config
	Relay    relay.Config
}

// NewOpener returns an Opener for cfg.Name. Unknown names and incomplete
// credentials surface as email.ErrInvalidConfig when the opener runs.
func NewOpener(cfg ChannelConfig, relayOpts ...relay.Option) Opener {
	return func(ctx context.Context) (email.Sender, error) {
		switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
		case ChannelResend:
			return asSender(resend.New(cfg.Resend))
		case ChannelPostmark:
			return asSender(postmark.New(cfg.Postmark))
		case ChannelRelay:
			return asSender(relay.New(cfg.Relay, relayOpts...))
		case ChannelFile:
			return asSender(email.NewFileSender(cfg.FileDir))
		case "":
			return nil, fmt.Errorf("%w: EMAIL_CHANNEL is not set", email.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: unknown channel %q", email.ErrInvalidConfig, cfg.Name)
	}
}

// Validate checks that cfg names a known channel with complete credentials.
// It opens nothing and touches neither the network nor the filesystem.
func (cfg ChannelConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case ChannelResend:
		return cfg.Resend.Validate()
	case ChannelPostmark:
		return cfg.Postmark.Validate()
	case ChannelRelay:
		return cfg.Relay.Validate()
	case ChannelFile:
		if strings.TrimSpace(cfg.FileDir) == "" {
			return fmt.Errorf("%w: EMAIL_FILE_DIR is required", email.ErrInvalidConfig)
		}
		return nil
	case "":
		return fmt.Errorf("%w: EMAIL_CHANNEL is not set", email.ErrInvalidConfig)
	}
	return fmt.Errorf("%w: unknown channel %q", email.ErrInvalidConfig, cfg.Name)
}

func asSender[S email.Sender](s S, err error) (email.Sender, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
