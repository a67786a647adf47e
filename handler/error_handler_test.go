package handler_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/letterdesk/handler"
	"github.com/dmitrymomot/letterdesk/pkg/binder"
)

func TestNewJSONErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		level       string
	}{
		{"malformed json", "application/json", `{"name":`, http.StatusBadRequest, "WARN"},
		{"unsupported media", "text/plain", "name=x", http.StatusUnsupportedMediaType, "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, nil))

			h := handler.Wrap(
				func(ctx handler.Context, req createRequest) handler.Response { return handler.Empty() },
				handler.WithBinders[handler.Context, createRequest](binder.JSON()),
				handler.WithErrorHandler[handler.Context, createRequest](handler.NewJSONErrorHandler(log)),
			)

			req := httptest.NewRequest(http.MethodPost, "/api/interns", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.NotNil(t, env.Error)
			assert.Contains(t, buf.String(), `"level":"`+tt.level+`"`)
			assert.Contains(t, buf.String(), `"path":"/api/interns"`)
		})
	}
}

func TestNewJSONErrorHandler_ServerErrorLogsAtErrorLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	eh := handler.NewJSONErrorHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	eh(handler.NewContext(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil)), handler.ErrServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
