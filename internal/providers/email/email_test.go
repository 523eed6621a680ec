package email

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInvoiceTemplate(t *testing.T) {
	subject, body, err := Render(TemplateInvoiceNew, map[string]any{
		"customer_name":  "Maria <Lopez>",
		"invoice_number": "INV-202406-0001",
		"total":          "$32.16",
		"due_date":       "2024-06-15",
		"business_name":  "Corner Recharge",
	})
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-202406-0001 from Corner Recharge", subject)
	assert.Contains(t, body, "$32.16")
	assert.Contains(t, body, "Maria &lt;Lopez&gt;")
}

func TestRenderSubjectOverride(t *testing.T) {
	subject, _, err := Render(TemplateRechargeReminder, map[string]any{"subject": "Top up today"})
	require.NoError(t, err)
	assert.Equal(t, "Top up today", subject)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestComposePlain(t *testing.T) {
	raw, err := Compose("shop@example.com", Message{
		To:       []string{"maria@example.com"},
		Subject:  "Hello",
		HTMLBody: "<p>Hi</p>",
	}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Hello", msg.Header.Get("Subject"))
	messageID := msg.Header.Get("Message-Id")
	assert.True(t, strings.HasPrefix(messageID, "<"))
	assert.True(t, strings.HasSuffix(messageID, "@example.com>"))
	id, err := ulid.ParseStrict(strings.ToUpper(strings.TrimSuffix(strings.TrimPrefix(messageID, "<"), "@example.com>")))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)), id.Time())
	body, err := io.ReadAll(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi</p>", string(body))
}

func TestComposeWithAttachment(t *testing.T) {
	pdf := []byte("%PDF-1.3 fake document")
	raw, err := Compose("shop@example.com", Message{
		To:       []string{"maria@example.com"},
		Subject:  "Invoice",
		HTMLBody: "<p>Attached</p>",
		Attachments: []Attachment{
			{Filename: "INV-1.pdf", ContentType: "application/pdf", Data: pdf},
		},
	}, time.Now())
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(msg.Body, params["boundary"])
	first, err := reader.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Header.Get("Content-Type"), "text/html"))

	second, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "INV-1.pdf", second.FileName())
	assert.Equal(t, "application/pdf", second.Header.Get("Content-Type"))
}

func TestSendRequiresRecipients(t *testing.T) {
	provider := NewSMTP(Config{Host: "localhost", Port: 2525})
	err := provider.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}
