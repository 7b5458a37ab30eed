// Package notify delivers password-reset codes to users.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime/multipart"
	"mime/quotedprintable"
	"net/smtp"
	"net/textproto"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"citizenpress/internal/config"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

var (
	htmlTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// mailBody holds the two alternatives of one message.
type mailBody struct {
	Text string
	HTML string
}

// ResetCode is the message sent when a user asks to reset a password.
type ResetCode struct {
	Email    string
	Name     string
	Code     string
	ValidFor time.Duration
}

type Notifier interface {
	SendResetCode(ctx context.Context, msg ResetCode) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends multipart text and HTML mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg  config.SMTP
	log  *zap.Logger
	send sendFunc
}

func NewSMTPMailer(cfg config.SMTP, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *SMTPMailer) SendResetCode(ctx context.Context, msg ResetCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderResetCode(m.cfg.FromName, msg)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s password reset code", m.cfg.FromName)
	raw, err := buildMessage(m.cfg.FromName, m.cfg.From, msg.Email, subject, body)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if err := m.send(addr, auth, m.cfg.From, []string{msg.Email}, raw); err != nil {
		return fmt.Errorf("send reset code to %s: %w", msg.Email, err)
	}

	m.log.Info("reset code sent", zap.String("email", msg.Email))
	return nil
}

// LogNotifier writes reset codes to the log. It is used in development when SMTP is not configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendResetCode(_ context.Context, msg ResetCode) error {
	n.log.Warn("smtp disabled, reset code not emailed",
		zap.String("email", msg.Email),
		zap.String("code", msg.Code),
		zap.Duration("valid_for", msg.ValidFor),
	)
	return nil
}

func renderResetCode(appName string, msg ResetCode) (mailBody, error) {
	data := map[string]string{
		"AppName":  appName,
		"Name":     msg.Name,
		"Code":     msg.Code,
		"ValidFor": formatMinutes(msg.ValidFor),
	}

	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, "reset_code.txt", data); err != nil {
		return mailBody{}, fmt.Errorf("render reset code email: %w", err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, "reset_code.html", data); err != nil {
		return mailBody{}, fmt.Errorf("render reset code email: %w", err)
	}
	return mailBody{Text: text.String(), HTML: html.String()}, nil
}

// buildMessage assembles a multipart/alternative message with the plain text part first.
func buildMessage(fromName, from, to, subject string, body mailBody) ([]byte, error) {
	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)

	for _, alt := range []struct{ contentType, content string }{
		{"text/plain; charset=\"UTF-8\"", body.Text},
		{"text/html; charset=\"UTF-8\"", body.HTML},
	} {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {alt.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("build email: %w", err)
		}

		qp := quotedprintable.NewWriter(part)
		if _, err := qp.Write([]byte(alt.content)); err != nil {
			return nil, fmt.Errorf("build email: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("build email: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build email: %w", err)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	b.Write(parts.Bytes())
	return b.Bytes(), nil
}

func formatMinutes(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
