package reminder

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniclinic/clinic-api/internal/email"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/notification"
)

type fakeOrgRepo struct {
	org *model.Organization
	err error
}

func (f *fakeOrgRepo) Create(_ context.Context, _ *model.Organization) error { return nil }

func (f *fakeOrgRepo) Get(_ context.Context, _ uuid.UUID) (*model.Organization, error) {
	return f.org, f.err
}

func (f *fakeOrgRepo) GetBySlug(_ context.Context, _ string) (*model.Organization, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeOrgRepo) UpdateSettings(_ context.Context, _ uuid.UUID, _ model.OrganizationSettings) error {
	return nil
}

func (f *fakeOrgRepo) Archive(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeOrgRepo) ListForUser(_ context.Context, _ uuid.UUID) ([]*model.Organization, error) {
	return nil, nil
}

func (f *fakeOrgRepo) ListActive(_ context.Context) ([]*model.Organization, error) {
	return []*model.Organization{f.org}, nil
}

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
	listErr      error

	gotFrom, gotTo string
	reminded       []uuid.UUID
}

func (f *fakeAppointmentRepo) Create(_ context.Context, _ *model.Appointment) error { return nil }

func (f *fakeAppointmentRepo) Get(_ context.Context, _, _ uuid.UUID) (*model.Appointment, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Delete(_ context.Context, _, _ uuid.UUID) error       { return nil }

func (f *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListForReminders(_ context.Context, _ uuid.UUID, from, to string) ([]*model.Appointment, error) {
	f.gotFrom, f.gotTo = from, to
	return f.appointments, f.listErr
}

func (f *fakeAppointmentRepo) MarkReminded(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.reminded = append(f.reminded, id)
	return nil
}

type fakeNotificationRepo struct {
	rows []*model.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotificationRepo) Update(_ context.Context, _ *model.Notification) error { return nil }

type captureGateway struct {
	sent []string
	err  error
}

func (g *captureGateway) Send(_ context.Context, _, message string) error {
	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, message)
	return nil
}

type reminderFixture struct {
	svc          *Service
	orgs         *fakeOrgRepo
	appointments *fakeAppointmentRepo
	gateway      *captureGateway
	orgID        uuid.UUID
}

func newReminderFixture(whatsappEnabled bool) *reminderFixture {
	orgID := uuid.New()
	orgs := &fakeOrgRepo{org: &model.Organization{
		Base:     model.Base{ID: orgID},
		Name:     "Juba Family Clinic",
		Status:   model.OrganizationStatusActive,
		Settings: model.OrganizationSettings{WhatsappEnabled: whatsappEnabled},
	}}
	appointments := &fakeAppointmentRepo{}
	gateway := &captureGateway{}
	notifier := notification.NewService(&fakeNotificationRepo{}, gateway, email.NoopService{})

	svc := NewService(orgs, appointments, notifier, nil, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	}
	return &reminderFixture{svc: svc, orgs: orgs, appointments: appointments, gateway: gateway, orgID: orgID}
}

func appointmentWithPatient(phone string) *model.Appointment {
	return &model.Appointment{
		Base:       model.Base{ID: uuid.New()},
		DoctorName: "Dr. Ayen",
		Date:       "2025-06-11",
		Time:       "10:00",
		Reason:     "Follow-up",
		Status:     model.AppointmentStatusScheduled,
		Patient:    &model.Patient{FullName: "Jane Doe", Phone: phone},
	}
}

func TestProcessWhatsappDisabled(t *testing.T) {
	f := newReminderFixture(false)
	f.appointments.appointments = []*model.Appointment{appointmentWithPatient("+211920000000")}

	result := f.svc.Process(context.Background(), f.orgID)
	assert.Zero(t, result.SentCount)
	assert.Zero(t, result.FailedCount)
	assert.Contains(t, result.Logs, "WhatsApp reminders are disabled for this clinic.")
	assert.Empty(t, f.gateway.sent, "nothing is fetched or sent")
	assert.Empty(t, f.appointments.gotFrom, "repository never queried")
}

func TestProcessQueriesTomorrowThroughDayAfter(t *testing.T) {
	f := newReminderFixture(true)
	f.svc.Process(context.Background(), f.orgID)
	assert.Equal(t, "2025-06-11", f.appointments.gotFrom)
	assert.Equal(t, "2025-06-12", f.appointments.gotTo)
}

func TestProcessEmptyWindow(t *testing.T) {
	f := newReminderFixture(true)
	result := f.svc.Process(context.Background(), f.orgID)
	assert.Zero(t, result.SentCount)
	assert.Contains(t, result.Logs, "No upcoming appointments found in the 24-48h window.")
}

func TestProcessFetchErrorIsFoldedIntoResult(t *testing.T) {
	f := newReminderFixture(true)
	f.appointments.listErr = errors.New("connection refused")

	result := f.svc.Process(context.Background(), f.orgID)
	assert.Zero(t, result.SentCount)
	require.Len(t, result.Logs, 1)
	assert.Contains(t, result.Logs[0], "Error:")
}

func TestProcessSendsAndMarksReminded(t *testing.T) {
	f := newReminderFixture(true)
	appt := appointmentWithPatient("+211920000000")
	f.appointments.appointments = []*model.Appointment{appt}

	result := f.svc.Process(context.Background(), f.orgID)
	assert.Equal(t, 1, result.SentCount)
	assert.Zero(t, result.FailedCount)
	assert.Contains(t, result.Logs, "Successfully reminded Jane Doe.")
	assert.Equal(t, []uuid.UUID{appt.ID}, f.appointments.reminded)

	require.Len(t, f.gateway.sent, 1)
	message := f.gateway.sent[0]
	assert.Contains(t, message, "*OmniClinic Reminder*")
	assert.Contains(t, message, "Hello Jane Doe,")
	assert.Contains(t, message, "*Juba Family Clinic*")
	assert.Contains(t, message, "Date: 2025-06-11")
	assert.Contains(t, message, "Time: 10:00")
	assert.Contains(t, message, "Doctor: Dr. Ayen")
	assert.Contains(t, message, "Reason: Follow-up")
}

func TestProcessDefaultsDoctorName(t *testing.T) {
	f := newReminderFixture(true)
	appt := appointmentWithPatient("+211920000000")
	appt.DoctorName = ""
	f.appointments.appointments = []*model.Appointment{appt}

	f.svc.Process(context.Background(), f.orgID)
	require.Len(t, f.gateway.sent, 1)
	assert.Contains(t, f.gateway.sent[0], "Doctor: General Practitioner")
}

func TestProcessSkipsMissingPhone(t *testing.T) {
	f := newReminderFixture(true)
	noPhone := appointmentWithPatient("")
	withPhone := appointmentWithPatient("+211920000000")
	f.appointments.appointments = []*model.Appointment{noPhone, withPhone}

	result := f.svc.Process(context.Background(), f.orgID)
	assert.Equal(t, 1, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Contains(t, result.Logs, "Skipped Jane Doe: No phone number.")
	assert.Equal(t, []uuid.UUID{withPhone.ID}, f.appointments.reminded, "skipped one stays unmarked")
}

func TestProcessGatewayFailureCountsAsFailed(t *testing.T) {
	f := newReminderFixture(true)
	f.gateway.err = errors.New("provider timeout")
	f.appointments.appointments = []*model.Appointment{appointmentWithPatient("+211920000000")}

	result := f.svc.Process(context.Background(), f.orgID)
	assert.Zero(t, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Empty(t, f.appointments.reminded, "failed send is not marked")
}
