package jwt

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/letterdesk/pkg/logger"
)

type subjectKey struct{}

// WithSubject stores the verified subject in ctx.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// Subject returns the verified subject, or "" when the request was not
// authenticated.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// LoggerExtractor adds the subject to log records as owner_id.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if s := Subject(ctx); s != "" {
			return logger.OwnerID(s), true
		}
		return slog.Attr{}, false
	}
}
