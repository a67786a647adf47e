package relay_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrymomot/letterdesk/pkg/email"
	"github.com/dmitrymomot/letterdesk/pkg/email/relay"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

var fixedNow = time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

func newSender(t *testing.T, h http.HandlerFunc, mutate func(*relay.Config)) *relay.Sender {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := relay.Config{
		URL:           srv.URL + "/send",
		Token:         "relay-token",
		SigningSecret: "s3cret",
		SenderEmail:   "hr@example.com",
		Timeout:       2 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := relay.New(cfg, relay.WithHTTPClient(srv.Client()), relay.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return s
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  relay.Config
		msg  string
	}{
		{"missing url", relay.Config{Token: "t"}, "RELAY_URL is required"},
		{"bad scheme", relay.Config{URL: "ftp://relay.local", Token: "t"}, "http or https"},
		{"missing host", relay.Config{URL: "https://", Token: "t"}, "host is required"},
		{"missing token", relay.Config{URL: "https://relay.local"}, "RELAY_TOKEN is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			require.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	assert.NoError(t, relay.Config{URL: "https://relay.local/send", Token: "t"}.Validate())
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var body []byte
	var header http.Header
	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/send", r.URL.Path)
		header = r.Header.Clone()
		body, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "relay-42"})
	}, nil)

	receipt, err := s.Send(context.Background(), email.Message{
		To:          "anu@example.com",
		Subject:     "Internship Offer Letter - Go Developer Position",
		HTML:        "<p>Dear Anu</p>",
		Attachments: []email.Attachment{{Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "relay-42", receipt.MessageID)
	assert.Equal(t, fixedNow, receipt.SubmittedAt)

	assert.Equal(t, "Bearer relay-token", header.Get("Authorization"))
	require.NoError(t, relay.Verify("s3cret", body, header, time.Minute, fixedNow))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "anu@example.com", decoded["to"])
	assert.Equal(t, "hr@example.com", decoded["from"])
	atts := decoded["attachments"].([]any)
	require.Len(t, atts, 1)
	assert.Equal(t, "JVBERg==", atts[0].(map[string]any)["content"])
}

func TestSender_Send_Unsigned(t *testing.T) {
	t.Parallel()

	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(relay.HeaderSignature))
		_, _ = w.Write([]byte(`{"id":"x"}`))
	}, func(c *relay.Config) { c.SigningSecret = "" })

	_, err := s.Send(context.Background(), email.Message{To: "anu@example.com", Subject: "s", Text: "t"})
	require.NoError(t, err)
}

func TestSender_Send_Rejected(t *testing.T) {
	t.Parallel()

	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("mailbox unavailable\n"))
	}, nil)

	_, err := s.Send(context.Background(), email.Message{To: "anu@example.com", Subject: "s", HTML: "h"})
	require.ErrorIs(t, err, email.ErrRejected)
	assert.Contains(t, err.Error(), "status 422: mailbox unavailable")
}

func TestSender_Send_MissingID(t *testing.T) {
	t.Parallel()

	s := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, nil)

	_, err := s.Send(context.Background(), email.Message{To: "anu@example.com", Subject: "s", HTML: "h"})
	assert.ErrorIs(t, err, email.ErrRejected)
}

func TestSender_Send_Transport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := relay.New(relay.Config{URL: url, Token: "t", Timeout: time.Second})
	require.NoError(t, err)

	_, err = s.Send(context.Background(), email.Message{To: "anu@example.com", Subject: "s", HTML: "h"})
	assert.ErrorIs(t, err, email.ErrTransport)
}

func TestSender_Ping(t *testing.T) {
	t.Parallel()

	healthy := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/send/health", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}, nil)
	assert.NoError(t, healthy.Ping(context.Background()))

	unauthorized := newSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)
	err := unauthorized.Ping(context.Background())
	require.ErrorIs(t, err, email.ErrRejected)
	assert.Contains(t, err.Error(), "Unauthorized")
}
