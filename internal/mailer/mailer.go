package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
)

// Demo logs payloads instead of sending them. It is used when no email
// provider is configured so the contact form still works locally.
type Demo struct {
	logger *zap.Logger
}

func NewDemo(logger *zap.Logger) *Demo {
	return &Demo{logger: logger}
}

func (d *Demo) Send(_ context.Context, p contact.Payload) error {
	d.logger.Info("demo mode: email not sent",
		zap.String("from_name", p.FromName),
		zap.String("from_email", p.FromEmail),
		zap.String("subject", p.Subject),
		zap.Int("message_len", len(p.Message)),
		zap.String("attachment_name", p.AttachmentName),
	)
	return nil
}

// New picks the mailer named by cfg.Provider. With no provider set it uses
// EmailJS when a service id is configured, SMTP when credentials are, and
// Demo otherwise.
func New(cfg config.MailConfig, logger *zap.Logger) (contact.Mailer, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.EmailJSService != "" && cfg.EmailJSService != "demo_service":
			provider = "emailjs"
		case cfg.SMTPUser != "" && cfg.SMTPPass != "":
			provider = "smtp"
		default:
			provider = "demo"
		}
	}

	switch provider {
	case "emailjs":
		if cfg.EmailJSService == "" || cfg.EmailJSTemplate == "" || cfg.EmailJSUser == "" {
			return nil, fmt.Errorf("emailjs needs EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID and EMAILJS_USER_ID")
		}
		return NewEmailJS(EmailJSConfig{
			Endpoint:    cfg.EmailJSEndpoint,
			ServiceID:   cfg.EmailJSService,
			TemplateID:  cfg.EmailJSTemplate,
			UserID:      cfg.EmailJSUser,
			AccessToken: cfg.EmailJSToken,
		}, nil), nil
	case "smtp":
		return NewSMTP(SMTPConfig{
			Host:    cfg.SMTPHost,
			Port:    cfg.SMTPPort,
			User:    cfg.SMTPUser,
			Pass:    cfg.SMTPPass,
			ToEmail: cfg.ToEmail,
		}), nil
	case "demo":
		logger.Warn("no email provider configured, contact form runs in demo mode")
		return NewDemo(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", provider)
	}
}
