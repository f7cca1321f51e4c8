package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/omniclinic/clinic-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to string, name string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour account is ready. You can now sign in to your clinic workspace.", name)
	return s.SendCustom(ctx, to, "Welcome to OmniClinic", body)
}

func (s *smtpService) SendCustom(_ context.Context, to string, subject string, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopService is used when SMTP is not configured.
type NoopService struct{}

func (NoopService) SendWelcome(context.Context, string, string) error        { return nil }
func (NoopService) SendCustom(context.Context, string, string, string) error { return nil }
