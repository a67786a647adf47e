package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRecord = errors.New("history: invalid record")

// Status is the outcome recorded for a letter.
type Status string

const (
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
	StatusDownloaded Status = "downloaded"
)

func (s Status) valid() bool {
	return s == StatusSent || s == StatusFailed || s == StatusDownloaded
}

// Record is one immutable audit row.
type Record struct {
	ID                string    `json:"id" bson:"_id"`
	OwnerID           string    `json:"owner_id" bson:"owner_id"`
	InternID          string    `json:"intern_id" bson:"intern_id"`
	Kind              string    `json:"kind" bson:"kind"`
	RecipientEmail    string    `json:"recipient_email" bson:"recipient_email"`
	Status            Status    `json:"status" bson:"status"`
	ProviderMessageID string    `json:"provider_message_id,omitempty" bson:"provider_message_id"`
	ErrorKind         string    `json:"error_kind,omitempty" bson:"error_kind"`
	ErrorDetail       string    `json:"error_detail,omitempty" bson:"error_detail"`
	Channel           string    `json:"channel,omitempty" bson:"channel"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// Store is an append-only, owner-scoped log of letter events. Reads are
// ordered newest first.
type Store interface {
	// Append assigns ID and CreatedAt and stores rec.
	Append(ctx context.Context, rec Record) (Record, error)
	ListAll(ctx context.Context, ownerID string) ([]Record, error)
	ListByIntern(ctx context.Context, ownerID, internID string) ([]Record, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// prepare validates rec and stamps it. Provider ids are dropped from rows
// that were not sent and error fields from rows that did not fail.
func prepare(rec Record, o options) (Record, error) {
	var problems []string
	if strings.TrimSpace(rec.OwnerID) == "" {
		problems = append(problems, "owner is required")
	}
	if strings.TrimSpace(rec.InternID) == "" {
		problems = append(problems, "intern is required")
	}
	if strings.TrimSpace(rec.Kind) == "" {
		problems = append(problems, "kind is required")
	}
	if !rec.Status.valid() {
		problems = append(problems, fmt.Sprintf("status %q is unknown", rec.Status))
	}
	if len(problems) > 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, ", "))
	}

	if rec.Status != StatusSent {
		rec.ProviderMessageID = ""
	}
	if rec.Status != StatusFailed {
		rec.ErrorKind, rec.ErrorDetail = "", ""
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = o.now().UTC().Truncate(time.Microsecond)
	return rec, nil
}
