package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/pkg/email"
)

func TestNewFileSender_RequiresDir(t *testing.T) {
	t.Parallel()

	s, err := email.NewFileSender(" ")
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
	assert.Nil(t, s)
}

func TestFileSender_Send(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "outbox")
	fixed := time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC)
	s, err := email.NewFileSender(dir, email.WithFileClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	receipt, err := s.Send(context.Background(), email.Message{
		To:      "anu@example.com",
		Subject: "Internship Offer Letter - Go Developer Position",
		HTML:    "<p>Dear Anu</p>",
		Tag:     "offer",
		Attachments: []email.Attachment{{
			Filename:    "offer-letter-anu.pdf",
			ContentType: "application/pdf",
			Content:     []byte("%PDF-1.3"),
		}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.MessageID)
	assert.Equal(t, fixed, receipt.SubmittedAt)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var metaPath string
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "2025_01_05_103000_offer_"))
		if strings.HasSuffix(e.Name(), ".json") {
			metaPath = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, metaPath)

	raw, err := os.ReadFile(metaPath)
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, receipt.MessageID, meta["id"])
	assert.Equal(t, "anu@example.com", meta["to"])
	assert.Len(t, meta["attachments"], 1)
}

func TestFileSender_InvalidMessage(t *testing.T) {
	t.Parallel()

	s, err := email.NewFileSender(t.TempDir())
	require.NoError(t, err)

	_, err = s.Send(context.Background(), email.Message{Subject: "x", HTML: "y"})
	assert.ErrorIs(t, err, email.ErrInvalidMessage)
}

func TestFileSender_Ping(t *testing.T) {
	t.Parallel()

	s, err := email.NewFileSender(filepath.Join(t.TempDir(), "a", "b"))
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}
