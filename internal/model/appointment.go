package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
)

type AppointmentPriority string

const (
	AppointmentPriorityNormal AppointmentPriority = "Normal"
	AppointmentPriorityUrgent AppointmentPriority = "Urgent"
)

// Appointment is independent of Visit: a kept appointment is expected to
// spawn a visit at the registry, but no automatic link is enforced.
type Appointment struct {
	Base
	OrganizationID uuid.UUID           `db:"organization_id" json:"organization_id"`
	PatientID      uuid.UUID           `db:"patient_id" json:"patient_id"`
	DoctorName     string              `db:"doctor_name" json:"doctor_name"`
	Date           string              `db:"date" json:"date"` // calendar date, YYYY-MM-DD
	Time           string              `db:"time" json:"time"`
	Reason         string              `db:"reason" json:"reason"`
	Status         AppointmentStatus   `db:"status" json:"status"`
	Priority       AppointmentPriority `db:"priority" json:"priority"`

	// RemindedAt prevents double-sending when the reminder batch reruns
	// inside the same window.
	RemindedAt *time.Time `db:"reminded_at" json:"reminded_at,omitempty"`

	Patient *Patient `db:"-" json:"patient,omitempty"`
}

const AppointmentDateLayout = "2006-01-02"

type CreateAppointmentRequest struct {
	PatientID  uuid.UUID `json:"patient_id" binding:"required"`
	DoctorName string    `json:"doctor_name"`
	Date       string    `json:"date" binding:"required"`
	Time       string    `json:"time" binding:"required"`
	Reason     string    `json:"reason"`
	Priority   string    `json:"priority" binding:"omitempty,oneof=Normal Urgent"`
}

type UpdateAppointmentRequest struct {
	DoctorName *string              `json:"doctor_name"`
	Date       *string              `json:"date"`
	Time       *string              `json:"time"`
	Reason     *string              `json:"reason"`
	Status     *AppointmentStatus   `json:"status"`
	Priority   *AppointmentPriority `json:"priority"`
}

type AppointmentFilters struct {
	OrganizationID uuid.UUID
	PatientID      uuid.UUID
	Status         AppointmentStatus
	DateFrom       string
	DateTo         string
}
