package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"citizenpress/internal/config"
)

func testSMTP() config.SMTP {
	return config.SMTP{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		From:     "noreply@citizenpress.local",
		FromName: "Citizen Press",
	}
}

func TestSMTPMailer_SendResetCode(t *testing.T) {
	mailer := NewSMTPMailer(testSMTP(), zap.NewNop())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := mailer.SendResetCode(context.Background(), ResetCode{
		Email:    "a@x.in",
		Name:     "Asha",
		Code:     "123456",
		ValidFor: 10 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@citizenpress.local", gotFrom)
	assert.Equal(t, []string{"a@x.in"}, gotTo)

	body := string(gotMsg)
	assert.Contains(t, body, "To: a@x.in\r\n")
	assert.Contains(t, body, "From: Citizen Press <noreply@citizenpress.local>\r\n")
	assert.Contains(t, body, "Content-Type: multipart/alternative")
	assert.Contains(t, body, "Content-Type: text/plain")
	assert.Contains(t, body, "Content-Type: text/html")
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "10 minutes")
	assert.Contains(t, body, "Hello Asha")
}

func TestSMTPMailer_SendFailure(t *testing.T) {
	mailer := NewSMTPMailer(testSMTP(), zap.NewNop())
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	}

	err := mailer.SendResetCode(context.Background(), ResetCode{Email: "a@x.in", Code: "123456"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a@x.in")
}

func TestSMTPMailer_EscapesName(t *testing.T) {
	body, err := renderResetCode("Citizen Press", ResetCode{Name: "<script>x</script>", Code: "111111"})
	require.NoError(t, err)
	assert.NotContains(t, body.HTML, "<script>")
}

func TestBuildMessage_Alternatives(t *testing.T) {
	raw, err := buildMessage("Citizen Press", "noreply@citizenpress.local", "a@x.in", "Reset",
		mailBody{Text: "code 123456", HTML: "<p>code <b>123456</b></p>"})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Reset", msg.Header.Get("Subject"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/alternative", mediaType)

	// multipart.Reader decodes quoted-printable parts transparently.
	mr := multipart.NewReader(msg.Body, params["boundary"])
	var types, bodies []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		content, err := io.ReadAll(part)
		require.NoError(t, err)
		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		types = append(types, partType)
		bodies = append(bodies, string(content))
	}

	assert.Equal(t, []string{"text/plain", "text/html"}, types)
	assert.Equal(t, []string{"code 123456", "<p>code <b>123456</b></p>"}, bodies)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notifier := NewLogNotifier(zap.New(core))

	require.NoError(t, notifier.SendResetCode(context.Background(), ResetCode{Email: "a@x.in", Code: "654321"}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "654321", entries[0].ContextMap()["code"])
}
