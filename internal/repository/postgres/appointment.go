package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, organization_id, patient_id, doctor_name, date, time, reason, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.OrganizationID,
		appointment.PatientID,
		appointment.DoctorName,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.Priority,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, orgID, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_name = $1, date = $2, time = $3, reason = $4, status = $5, priority = $6, updated_at = $7
		WHERE organization_id = $8 AND id = $9
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.DoctorName,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.Priority,
		time.Now(),
		appointment.OrganizationID,
		appointment.ID,
	)
	return err
}

func (r *appointmentRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `UPDATE appointments SET deleted_at = $1 WHERE organization_id = $2 AND id = $3`
	_, err := r.db.ExecContext(ctx, query, time.Now(), orgID, id)
	return err
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE organization_id = $1 AND deleted_at IS NULL`
	args := []interface{}{filters.OrganizationID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filters.PatientID != uuid.Nil {
		args = append(args, filters.PatientID)
		query += fmt.Sprintf(` AND patient_id = $%d`, len(args))
	}
	if filters.DateFrom != "" {
		args = append(args, filters.DateFrom)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filters.DateTo != "" {
		args = append(args, filters.DateTo)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date, time`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListForReminders selects Scheduled appointments on calendar dates in
// [from, to] inclusive that have not been reminded yet, with their patient.
func (r *appointmentRepository) ListForReminders(ctx context.Context, orgID uuid.UUID, from, to string) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.organization_id, a.patient_id, a.doctor_name, a.date, a.time, a.reason,
		       a.status, a.priority, a.reminded_at, a.created_at, a.updated_at, a.deleted_at,
		       p.id AS "patient.id", p.organization_id AS "patient.organization_id",
		       p.mrn AS "patient.mrn", p.full_name AS "patient.full_name",
		       p.gender AS "patient.gender", p.dob AS "patient.dob",
		       p.phone AS "patient.phone", p.address AS "patient.address",
		       p.created_at AS "patient.created_at", p.updated_at AS "patient.updated_at"
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.organization_id = $1
		  AND a.status = $2
		  AND a.date >= $3 AND a.date <= $4
		  AND a.reminded_at IS NULL
		  AND a.deleted_at IS NULL
		ORDER BY a.date, a.time
	`
	type appointmentRow struct {
		model.Appointment
		PatientRow model.Patient `db:"patient"`
	}
	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, orgID, model.AppointmentStatusScheduled, from, to); err != nil {
		return nil, fmt.Errorf("failed to list reminder appointments: %w", err)
	}

	appointments := make([]*model.Appointment, 0, len(rows))
	for i := range rows {
		a := rows[i].Appointment
		p := rows[i].PatientRow
		a.Patient = &p
		appointments = append(appointments, &a)
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE appointments SET reminded_at = $1, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}
