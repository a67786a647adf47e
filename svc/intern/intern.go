package intern

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("intern: record not found")
	ErrInvalidRecord = errors.New("intern: invalid record")
	ErrConflict      = errors.New("intern: record already exists")
)

// Status is the lifecycle state of an internship.
type Status string

const (
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusTerminated Status = "terminated"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusTerminated:
		return true
	}
	return false
}

// Record is an intern as stored by the intern store. Dates are kept as the
// ISO strings the client submitted; the letter renderer parses them.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Position  string    `json:"position" bson:"position"`
	StartDate string    `json:"start_date" bson:"start_date"`
	Duration  string    `json:"duration" bson:"duration"`
	Location  string    `json:"location" bson:"location"`
	Stipend   string    `json:"stipend" bson:"stipend"`
	OfferDate string    `json:"offer_date,omitempty" bson:"offer_date"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store persists intern records. Every read and write is scoped to the
// owner; a record of another owner behaves as missing.
type Store interface {
	// List returns the owner's interns, newest first.
	List(ctx context.Context, ownerID string) ([]Record, error)
	Get(ctx context.Context, ownerID, id string) (Record, error)
	// Lookup finds a record by id across owners. It backs the public
	// certificate check only.
	Lookup(ctx context.Context, id string) (Record, error)
	// Create assigns ID, status default and timestamps.
	Create(ctx context.Context, rec Record) (Record, error)
	// Update replaces the mutable fields of an existing record.
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now for timestamps.
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

func (o options) timestamp() time.Time {
	return o.now().UTC().Truncate(time.Microsecond)
}

// Normalize trims every text field and lowercases the email.
func (r Record) Normalize() Record {
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Position = strings.TrimSpace(r.Position)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.Duration = strings.TrimSpace(r.Duration)
	r.Location = strings.TrimSpace(r.Location)
	r.Stipend = strings.TrimSpace(r.Stipend)
	r.OfferDate = strings.TrimSpace(r.OfferDate)
	r.Status = Status(strings.ToLower(strings.TrimSpace(string(r.Status))))
	return r
}

// Validate checks the fields every store requires.
func (r Record) Validate() error {
	var problems []string
	if r.OwnerID == "" {
		problems = append(problems, "owner is required")
	}
	if r.Name == "" {
		problems = append(problems, "name is required")
	}
	if r.Email != "" {
		if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
			problems = append(problems, "email is invalid")
		}
	}
	if r.Status != "" && !r.Status.Valid() {
		problems = append(problems, fmt.Sprintf("status %q is unknown", r.Status))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, ", "))
	}
	return nil
}

func prepareCreate(rec Record, o options) (Record, error) {
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusActive
	}
	now := o.timestamp()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec, nil
}

func prepareUpdate(rec, existing Record, o options) (Record, error) {
	rec = rec.Normalize()
	if rec.Status == "" {
		rec.Status = existing.Status
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	rec.ID = existing.ID
	rec.OwnerID = existing.OwnerID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = o.timestamp()
	return rec, nil
}
