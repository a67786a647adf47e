package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileSender writes messages to a directory instead of delivering them.
// Each message produces <stamp>_<tag>.html, a matching .json with the
// metadata, and one file per attachment.
type FileSender struct {
	dir string
	now func() time.Time
}

// FileSenderOption configures a FileSender.
type FileSenderOption func(*FileSender)

// WithFileClock overrides the clock used for file names and receipts.
func WithFileClock(now func() time.Time) FileSenderOption {
	return func(s *FileSender) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileSender returns a FileSender rooted at dir. The directory is created
// on first send.
func NewFileSender(dir string, opts ...FileSenderOption) (*FileSender, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	s := &FileSender{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type fileMetadata struct {
	ID          string            `json:"id"`
	Timestamp   string            `json:"timestamp"`
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	Tag         string            `json:"tag,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
}

func (s *FileSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Receipt{}, fmt.Errorf("%w: create directory: %v", ErrTransport, err)
	}

	now := s.now()
	id := uuid.NewString()

	identifier := msg.Tag
	if identifier == "" {
		identifier = msg.Subject
	}
	base := fmt.Sprintf("%s_%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(identifier), id[:8])

	if err := os.WriteFile(filepath.Join(s.dir, base+".html"), []byte(msg.HTML), 0o644); err != nil {
		return Receipt{}, fmt.Errorf("%w: write html: %v", ErrTransport, err)
	}

	meta := fileMetadata{
		ID:        id,
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		Subject:   msg.Subject,
		Tag:       msg.Tag,
		Headers:   msg.Headers,
	}
	for _, a := range msg.Attachments {
		name := base + "_" + sanitizeFilename(a.Filename)
		if err := os.WriteFile(filepath.Join(s.dir, name), a.Content, 0o644); err != nil {
			return Receipt{}, fmt.Errorf("%w: write attachment: %v", ErrTransport, err)
		}
		meta.Attachments = append(meta.Attachments, name)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: marshal metadata: %v", ErrTransport, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), data, 0o644); err != nil {
		return Receipt{}, fmt.Errorf("%w: write metadata: %v", ErrTransport, err)
	}

	return Receipt{MessageID: id, SubmittedAt: now}, nil
}

// Ping checks that the output directory can be created.
func (s *FileSender) Ping(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilename.ReplaceAllString(s, "")
	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
