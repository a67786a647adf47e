package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/letterdesk/pkg/email"
	"github.com/dmitrymomot/letterdesk/svc/export"
	"github.com/dmitrymomot/letterdesk/svc/letter"
)

// ErrorKind classifies a failed dispatch.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindValidation    ErrorKind = "validation"
	KindConfiguration ErrorKind = "configuration"
	KindChannel       ErrorKind = "channel"
	KindTransport     ErrorKind = "transport"
)

// Result is the normalized outcome of one send.
type Result struct {
	Success           bool      `json:"success"`
	Channel           string    `json:"channel"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	SentAt            time.Time `json:"sent_at,omitzero"`
	ErrorKind         ErrorKind `json:"error_kind,omitempty"`
	ErrorDetail       string    `json:"error_detail,omitempty"`

	err error
}

// Err returns the underlying error, nil on success.
func (r Result) Err() error {
	return r.err
}

// HealthResult reports whether the channel is configured and reachable.
type HealthResult struct {
	Channel    string `json:"channel"`
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
	// Probed is false when the channel has no way to check reachability
	// without sending mail; Reachable is then assumed.
	Probed      bool      `json:"probed"`
	CheckedAt   time.Time `json:"checked_at"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
	ErrorDetail string    `json:"error_detail,omitempty"`
}

// Classify maps an error from rendering, exporting or a channel to its kind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, letter.ErrRender),
		errors.Is(err, export.ErrNilLetter):
		// Broken templates or company settings; the channel was never contacted.
		return KindConfiguration
	case errors.Is(err, letter.ErrValidation),
		errors.Is(err, letter.ErrUnknownKind),
		errors.Is(err, email.ErrInvalidMessage),
		errors.Is(err, export.ErrExport),
		errors.Is(err, ErrMissingRecipient):
		return KindValidation
	case errors.Is(err, email.ErrInvalidConfig):
		return KindConfiguration
	case errors.Is(err, email.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransport
	}
	return KindChannel
}
