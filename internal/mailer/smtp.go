package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/Zachkp/portfolio/internal/contact"
)

type SMTPConfig struct {
	Host    string
	Port    string
	User    string
	Pass    string
	ToEmail string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends payloads as plain email, with the attachment as a MIME part.
type SMTP struct {
	cfg  SMTPConfig
	send sendFunc
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.ToEmail == "" {
		cfg.ToEmail = cfg.User
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

// Send ignores ctx: net/smtp has no cancellation.
func (m *SMTP) Send(_ context.Context, p contact.Payload) error {
	if m.cfg.User == "" || m.cfg.Pass == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}

	msg, err := m.compose(p)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.User, []string{m.cfg.ToEmail}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTP) compose(p contact.Payload) ([]byte, error) {
	var buf bytes.Buffer
	subject := mime.QEncoding.Encode("utf-8", "Portfolio Contact: "+p.Subject)

	fmt.Fprintf(&buf, "To: %s\r\n", m.cfg.ToEmail)
	fmt.Fprintf(&buf, "From: %s\r\n", m.cfg.User)
	fmt.Fprintf(&buf, "Reply-To: %s\r\n", p.ReplyTo)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	body := fmt.Sprintf(`New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, p.FromName, p.FromEmail, p.Subject, p.Message)

	contentType, data, hasAttachment := contact.ParseDataURL(p.Attachment)
	if !hasAttachment {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
	if err != nil {
		return nil, fmt.Errorf("compose text part: %w", err)
	}
	if _, err := text.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("compose text part: %w", err)
	}

	name := p.AttachmentName
	if name == "" {
		name = "attachment"
	}
	file, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contact.CleanContentType(contentType)},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
	})
	if err != nil {
		return nil, fmt.Errorf("compose attachment part: %w", err)
	}
	if err := writeBase64Lines(file, data); err != nil {
		return nil, fmt.Errorf("compose attachment part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBase64Lines wraps the encoding at 76 columns as RFC 2045 requires.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(76, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
