package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omniclinic/clinic-api/internal/email"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
)

// WhatsappGateway sends one message to a phone number. The production
// deployment plugs a provider in here; the default gateway only logs.
type WhatsappGateway interface {
	Send(ctx context.Context, phone, message string) error
}

type loggingGateway struct {
	logger zerolog.Logger
}

// NewLoggingGateway returns a gateway that records the message instead of
// delivering it. Useful until a WhatsApp business account is provisioned.
func NewLoggingGateway(logger zerolog.Logger) WhatsappGateway {
	return &loggingGateway{logger: logger}
}

func (g *loggingGateway) Send(_ context.Context, phone, message string) error {
	g.logger.Info().Str("phone", phone).Str("message", message).Msg("whatsapp message (log-only gateway)")
	return nil
}

type Service struct {
	repo     repository.NotificationRepository
	whatsapp WhatsappGateway
	email    email.Service
}

func NewService(repo repository.NotificationRepository, whatsapp WhatsappGateway, emailSvc email.Service) *Service {
	return &Service{repo: repo, whatsapp: whatsapp, email: emailSvc}
}

// SendWhatsapp delivers via the gateway and records the attempt. The
// notification row is written either way so failed sends stay visible.
func (s *Service) SendWhatsapp(ctx context.Context, orgID uuid.UUID, phone, message string) error {
	n := &model.Notification{
		OrganizationID: orgID,
		Channel:        model.NotificationChannelWhatsapp,
		Recipient:      phone,
		Content:        message,
		Status:         model.NotificationStatusPending,
	}
	n.ID = uuid.New()

	sendErr := s.whatsapp.Send(ctx, phone, message)
	if sendErr != nil {
		n.Status = model.NotificationStatusFailed
	} else {
		now := time.Now()
		n.Status = model.NotificationStatusSent
		n.SentAt = &now
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return sendErr
}

func (s *Service) SendEmail(ctx context.Context, orgID uuid.UUID, to, subject, content string) error {
	n := &model.Notification{
		OrganizationID: orgID,
		Channel:        model.NotificationChannelEmail,
		Recipient:      to,
		Subject:        subject,
		Content:        content,
		Status:         model.NotificationStatusPending,
	}
	n.ID = uuid.New()

	sendErr := s.email.SendCustom(ctx, to, subject, content)
	if sendErr != nil {
		n.Status = model.NotificationStatusFailed
	} else {
		now := time.Now()
		n.Status = model.NotificationStatusSent
		n.SentAt = &now
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return sendErr
}
