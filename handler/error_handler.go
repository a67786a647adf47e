package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/letterdesk/pkg/binder"
	"github.com/dmitrymomot/letterdesk/pkg/logger"
)

// NewJSONErrorHandler logs err and writes it in the JSON envelope. Binder
// failures become 400 or 415; 5xx are logged at error level, the rest at warn.
func NewJSONErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx Context, err error) {
		err = translateBindError(err)

		resp := JSONError(err)
		status := resp.(*jsonResponse).status

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)

		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}

func translateBindError(err error) error {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return errors.Join(NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type"), err)
	case errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrInvalidQuery),
		errors.Is(err, binder.ErrInvalidPath):
		return errors.Join(ErrBadRequest, err)
	}
	return err
}
