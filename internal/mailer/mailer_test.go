package mailer

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
)

func testPayload() contact.Payload {
	return contact.Payload{
		FromName:  "Jo",
		FromEmail: "jo@example.com",
		Subject:   "Hello",
		Message:   "I would like to talk.",
		ToName:    "Owner",
		ReplyTo:   "jo@example.com",
	}
}

func TestEmailJSSend(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	m := NewEmailJS(EmailJSConfig{Endpoint: srv.URL, ServiceID: "svc", TemplateID: "tpl", UserID: "user", AccessToken: "tok"}, srv.Client())
	require.NoError(t, m.Send(context.Background(), testPayload()))

	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "user", got.UserID)
	assert.Equal(t, "tok", got.AccessToken)
	assert.Equal(t, "Jo", got.TemplateParams["from_name"])
	assert.Equal(t, "jo@example.com", got.TemplateParams["reply_to"])
}

func TestEmailJSSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("The template ID is invalid"))
	}))
	defer srv.Close()

	m := NewEmailJS(EmailJSConfig{Endpoint: srv.URL}, srv.Client())
	err := m.Send(context.Background(), testPayload())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "template ID is invalid")
}

func TestEmailJSRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewEmailJS(EmailJSConfig{Endpoint: srv.URL}, srv.Client())
	assert.Error(t, m.Send(ctx, testPayload()))
}

func TestSMTPRequiresCredentials(t *testing.T) {
	m := NewSMTP(SMTPConfig{})
	assert.ErrorContains(t, m.Send(context.Background(), testPayload()), "credentials")
}

func TestSMTPSendPlain(t *testing.T) {
	m := NewSMTP(SMTPConfig{User: "site@example.com", Pass: "secret", ToEmail: "owner@example.com"})

	var addr, from string
	var to []string
	var raw []byte
	m.send = func(a string, _ smtp.Auth, f string, rcpt []string, msg []byte) error {
		addr, from, to, raw = a, f, rcpt, msg
		return nil
	}

	require.NoError(t, m.Send(context.Background(), testPayload()))

	assert.Equal(t, "smtp.gmail.com:587", addr)
	assert.Equal(t, "site@example.com", from)
	assert.Equal(t, []string{"owner@example.com"}, to)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", msg.Header.Get("Reply-To"))

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Portfolio Contact: Hello", subject)

	body, err := io.ReadAll(msg.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "I would like to talk.")
}

func TestSMTPSendWithAttachment(t *testing.T) {
	m := NewSMTP(SMTPConfig{User: "site@example.com", Pass: "secret"})
	var raw []byte
	m.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		raw = msg
		return nil
	}

	p := testPayload()
	p.Attachment = contact.DataURL("text/plain", []byte("attached text"))
	p.AttachmentName = "notes.txt"
	require.NoError(t, m.Send(context.Background(), p))

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	text, err := mr.NextPart()
	require.NoError(t, err)
	textBody, _ := io.ReadAll(text)
	assert.Contains(t, string(textBody), "Name: Jo")

	file, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", file.FileName())
	assert.Equal(t, "text/plain", file.Header.Get("Content-Type"))
}

func TestDemoLogsAndSucceeds(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := NewDemo(zap.New(core))

	require.NoError(t, d.Send(context.Background(), testPayload()))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Jo", logs.All()[0].ContextMap()["from_name"])
}

func TestNewPicksProvider(t *testing.T) {
	logger := zap.NewNop()

	m, err := New(config.MailConfig{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &Demo{}, m)

	m, err = New(config.MailConfig{EmailJSService: "demo_service"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &Demo{}, m)

	m, err = New(config.MailConfig{SMTPUser: "u", SMTPPass: "p"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SMTP{}, m)

	m, err = New(config.MailConfig{EmailJSService: "s", EmailJSTemplate: "t", EmailJSUser: "u"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &EmailJS{}, m)

	_, err = New(config.MailConfig{Provider: "emailjs"}, logger)
	assert.Error(t, err)

	_, err = New(config.MailConfig{Provider: "fax"}, logger)
	assert.Error(t, err)
}

func TestSMTPAttachmentTypeCannotAddHeaders(t *testing.T) {
	m := NewSMTP(SMTPConfig{User: "site@example.com", Pass: "secret"})
	var raw []byte
	m.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		raw = msg
		return nil
	}

	p := testPayload()
	p.Attachment = "data:text/plain\r\nBcc: someone@example.com;base64,aGk="
	p.AttachmentName = "hi.txt"
	require.NoError(t, m.Send(context.Background(), p))

	assert.NotContains(t, string(raw), "Bcc:")

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	_, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	mr := multipart.NewReader(msg.Body, params["boundary"])
	_, err = mr.NextPart()
	require.NoError(t, err)
	file, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", file.Header.Get("Content-Type"))
}
