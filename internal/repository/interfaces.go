package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	OrganizationRepository interface {
		Create(ctx context.Context, org *model.Organization) error
		Get(ctx context.Context, id uuid.UUID) (*model.Organization, error)
		GetBySlug(ctx context.Context, slug string) (*model.Organization, error)
		UpdateSettings(ctx context.Context, id uuid.UUID, settings model.OrganizationSettings) error
		Archive(ctx context.Context, id uuid.UUID) error
		ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Organization, error)
		ListActive(ctx context.Context) ([]*model.Organization, error)
	}

	MembershipRepository interface {
		Create(ctx context.Context, m *model.Membership) error
		Get(ctx context.Context, orgID, userID uuid.UUID) (*model.Membership, error)
		List(ctx context.Context, orgID uuid.UUID) ([]*model.Membership, error)
		UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role model.Role) error
		Delete(ctx context.Context, orgID, userID uuid.UUID) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	VisitRepository interface {
		Create(ctx context.Context, visit *model.Visit) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Visit, error)
		// UpdateStatus advances a visit only when it is still in the
		// expected stage; gone reports whether the row matched.
		UpdateStatus(ctx context.Context, orgID, id uuid.UUID, from, to model.VisitStatus) (bool, error)
		ListByStatus(ctx context.Context, orgID uuid.UUID, status model.VisitStatus) ([]*model.Visit, error)
		AppendEvent(ctx context.Context, event *model.VisitEvent) error
		ListEvents(ctx context.Context, orgID, visitID uuid.UUID) ([]*model.VisitEvent, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, orgID, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListForReminders returns Scheduled, not-yet-reminded appointments
		// with their patients, for calendar dates in [from, to] inclusive.
		ListForReminders(ctx context.Context, orgID uuid.UUID, from, to string) ([]*model.Appointment, error)
		MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.Invoice, error)
		UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status model.InvoiceStatus) error
		List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error)
		NextNumber(ctx context.Context, orgID uuid.UUID, year int) (string, error)
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.InventoryItem) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.InventoryItem, error)
		Update(ctx context.Context, item *model.InventoryItem) error
		Delete(ctx context.Context, orgID, id uuid.UUID) error
		List(ctx context.Context, orgID uuid.UUID, department string) ([]*model.InventoryItem, error)
		// DecrementStock atomically subtracts qty with a zero floor; it
		// reports false when stock was insufficient.
		DecrementStock(ctx context.Context, orgID, id uuid.UUID, qty int) (bool, error)
		IncrementStock(ctx context.Context, orgID, id uuid.UUID, qty int) error
	}

	DocumentRepository interface {
		Create(ctx context.Context, doc *model.PatientDocument) error
		Get(ctx context.Context, orgID, id uuid.UUID) (*model.PatientDocument, error)
		ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.PatientDocument, error)
		Delete(ctx context.Context, orgID, id uuid.UUID) error
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, orgID uuid.UUID, p model.Pagination) ([]*model.AuditLog, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) error
	}

	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		Update(ctx context.Context, n *model.Notification) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
