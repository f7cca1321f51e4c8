package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/service/notification"
	"github.com/omniclinic/clinic-api/pkg/metrics"
)

// Service runs the appointment reminder batch for one tenant at a time. A
// run never returns an error: failures are folded into the result so the
// runner keeps going across organizations.
type Service struct {
	orgs         repository.OrganizationRepository
	appointments repository.AppointmentRepository
	notifier     *notification.Service
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(
	orgs repository.OrganizationRepository,
	appointments repository.AppointmentRepository,
	notifier *notification.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		orgs:         orgs,
		appointments: appointments,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Process sends WhatsApp reminders for the organization's Scheduled
// appointments falling on the next and next-next calendar day. Appointments
// already reminded are excluded by the query, and each send marks the row,
// so a rerun inside the same window sends nothing twice.
func (s *Service) Process(ctx context.Context, orgID uuid.UUID) *model.ReminderResult {
	result := &model.ReminderResult{Logs: []string{}}

	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		result.Logs = append(result.Logs, fmt.Sprintf("Error: %v", err))
		return result
	}
	if !org.Settings.WhatsappEnabled {
		result.Logs = append(result.Logs, "WhatsApp reminders are disabled for this clinic.")
		return result
	}

	today := s.now()
	from := today.AddDate(0, 0, 1).Format(model.AppointmentDateLayout)
	to := today.AddDate(0, 0, 2).Format(model.AppointmentDateLayout)

	appointments, err := s.appointments.ListForReminders(ctx, orgID, from, to)
	if err != nil {
		s.logger.Error().Err(err).Str("organization_id", orgID.String()).Msg("reminder fetch failed")
		result.Logs = append(result.Logs, fmt.Sprintf("Error: %v", err))
		return result
	}
	if len(appointments) == 0 {
		result.Logs = append(result.Logs, "No upcoming appointments found in the 24-48h window.")
		return result
	}

	for _, appt := range appointments {
		patient := appt.Patient
		if patient == nil || patient.Phone == "" {
			name := ""
			if patient != nil {
				name = patient.FullName
			}
			result.Logs = append(result.Logs, fmt.Sprintf("Skipped %s: No phone number.", name))
			result.FailedCount++
			continue
		}

		message := s.composeMessage(org.Name, appt, patient)
		if err := s.notifier.SendWhatsapp(ctx, orgID, patient.Phone, message); err != nil {
			result.Logs = append(result.Logs, fmt.Sprintf("Failed to remind %s: %v", patient.FullName, err))
			result.FailedCount++
			continue
		}

		if err := s.appointments.MarkReminded(ctx, appt.ID, s.now()); err != nil {
			s.logger.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to mark appointment reminded")
		}
		result.SentCount++
		result.Logs = append(result.Logs, fmt.Sprintf("Successfully reminded %s.", patient.FullName))
	}

	if s.metrics != nil {
		s.metrics.RemindersSent.Add(float64(result.SentCount))
		s.metrics.RemindersFailed.Add(float64(result.FailedCount))
	}
	return result
}

func (s *Service) composeMessage(clinicName string, appt *model.Appointment, patient *model.Patient) string {
	doctor := appt.DoctorName
	if doctor == "" {
		doctor = "General Practitioner"
	}
	return fmt.Sprintf(
		"*OmniClinic Reminder*\n\n"+
			"Hello %s,\n"+
			"This is a reminder for your appointment at *%s*.\n\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Doctor: %s\n"+
			"Reason: %s\n\n"+
			"Please arrive 15 minutes early. Reply to this message if you need to reschedule.",
		patient.FullName, clinicName, appt.Date, appt.Time, doctor, appt.Reason,
	)
}
