package email

import (
	"context"
	"fmt"
	"net/mail"

	"agrocommunity_backend/internal/logger"

	"gopkg.in/gomail.v2"
)

// Sender delivers activation codes.
type Sender interface {
	SendActivation(ctx context.Context, mail ActivationMail) error
}

// ============================================
// SMTP
// ============================================

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     mail.Address
}

func (c SMTPConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.Port)
	}
	return nil
}

type SMTPSender struct {
	from      mail.Address
	templates *TemplateManager
	dialer    *gomail.Dialer
}

func NewSMTPSender(config SMTPConfig, templates *TemplateManager) (*SMTPSender, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	// The login user doubles as sender when no from address is configured.
	if config.From.Address == "" {
		config.From.Address = config.Username
	}

	return &SMTPSender{
		from:      config.From,
		templates: templates,
		dialer:    gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (s *SMTPSender) SendActivation(ctx context.Context, mail ActivationMail) error {
	body, err := s.templates.Render(TemplateActivation, TemplateData{
		"Name":           mail.Name,
		"ActivationCode": mail.Code,
	})
	if err != nil {
		return err
	}

	return s.Send(ctx, &Email{
		To:       []string{mail.To},
		Subject:  "Activate your account",
		HTMLBody: body,
	})
}

// Send dials the SMTP server for each message. gomail has no context
// support, so ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, e *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from.Address, s.from.Name)
	m.SetHeader("To", e.To...)
	m.SetHeader("Subject", e.Subject)
	if e.Body != "" {
		m.SetBody("text/plain", e.Body)
	}
	if e.HTMLBody != "" {
		if e.Body != "" {
			m.AddAlternative("text/html", e.HTMLBody)
		} else {
			m.SetBody("text/html", e.HTMLBody)
		}
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %v: %w", e.To, err)
	}
	logger.CtxInfo(ctx, "Mail sent", "to", e.To, "subject", e.Subject)
	return nil
}

// ============================================
// Log (development)
// ============================================

// LogSender writes the code to the log instead of sending mail.
type LogSender struct{}

func (LogSender) SendActivation(ctx context.Context, mail ActivationMail) error {
	logger.CtxWarn(ctx, "Activation code (mail delivery disabled)", "to", mail.To, "code", mail.Code)
	return nil
}
