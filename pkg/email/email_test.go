package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/letterdesk/pkg/email"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	valid := email.Message{To: "anu@example.com", Subject: "Hello", HTML: "<p>hi</p>"}

	tests := []struct {
		name    string
		mutate  func(m *email.Message)
		wantErr bool
	}{
		{"valid", func(m *email.Message) {}, false},
		{"text only body", func(m *email.Message) { m.HTML = ""; m.Text = "hi" }, false},
		{"named recipient", func(m *email.Message) { m.To = "Anu <anu@example.com>" }, false},
		{"missing recipient", func(m *email.Message) { m.To = "" }, true},
		{"bad recipient", func(m *email.Message) { m.To = "not-an-email" }, true},
		{"missing subject", func(m *email.Message) { m.Subject = "  " }, true},
		{"missing body", func(m *email.Message) { m.HTML = "" }, true},
		{"attachment without content", func(m *email.Message) {
			m.Attachments = []email.Attachment{{Filename: "a.pdf"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := valid
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidMessage)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hr@example.com", email.FormatAddress("", "hr@example.com"))
	assert.Equal(t, `"Roriri HR" <hr@example.com>`, email.FormatAddress("Roriri HR", "hr@example.com"))
	assert.True(t, email.ValidAddress(email.FormatAddress("Roriri HR", "hr@example.com")))
}
