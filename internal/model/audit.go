package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is the append-only per-tenant action trail.
type AuditLog struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	OrganizationID uuid.UUID       `json:"organization_id" db:"organization_id"`
	Action         string          `json:"action" db:"action"`
	EntityType     string          `json:"entity_type" db:"entity_type"`
	EntityID       uuid.UUID       `json:"entity_id" db:"entity_id"`
	Changes        json.RawMessage `json:"changes,omitempty" db:"changes"`
	Metadata       json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	IPAddress      string          `json:"ip_address" db:"ip_address"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

const (
	AuditActionCreate   = "create"
	AuditActionUpdate   = "update"
	AuditActionDelete   = "delete"
	AuditActionDispense = "dispense"
	AuditActionAdvance  = "advance"

	AuditEntityOrganization = "organization"
	AuditEntityMembership   = "membership"
	AuditEntityPatient      = "patient"
	AuditEntityVisit        = "visit"
	AuditEntityAppointment  = "appointment"
	AuditEntityInvoice      = "invoice"
	AuditEntityInventory    = "inventory_item"
)
