package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencySSP Currency = "SSP"
)

type OrganizationStatus string

const (
	OrganizationStatusActive   OrganizationStatus = "active"
	OrganizationStatusArchived OrganizationStatus = "archived"
)

// OrganizationSettings is stored as a single JSONB document. Updates replace
// the whole document after a full read; concurrent edits are last-write-wins.
type OrganizationSettings struct {
	TriageRequired     bool                `json:"triage_required"`
	DefaultCurrency    Currency            `json:"default_currency"`
	WhatsappEnabled    bool                `json:"whatsapp_enabled"`
	EnabledDepartments map[string]bool     `json:"enabled_departments,omitempty"`
	DepartmentServices map[string][]string `json:"department_services,omitempty"`
}

// DefaultOrganizationSettings are applied at onboarding.
func DefaultOrganizationSettings() OrganizationSettings {
	return OrganizationSettings{
		TriageRequired:  true,
		DefaultCurrency: CurrencySSP,
		WhatsappEnabled: false,
	}
}

// DepartmentEnabled reports whether a department is switched on for the
// tenant. A missing key counts as disabled.
func (s OrganizationSettings) DepartmentEnabled(department string) bool {
	return s.EnabledDepartments[department]
}

// Services returns the configured service catalog for a department, e.g.
// lab test names or drug categories.
func (s OrganizationSettings) Services(department string) []string {
	return s.DepartmentServices[department]
}

func (s OrganizationSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *OrganizationSettings) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = OrganizationSettings{}
		return nil
	default:
		return fmt.Errorf("unsupported type for organization settings: %T", src)
	}
}

// Organization is the tenant. Every clinical record carries its ID and is
// never readable across tenant boundaries. Organizations are archived, not
// hard-deleted.
type Organization struct {
	Base
	Name     string               `db:"name" json:"name"`
	Slug     string               `db:"slug" json:"slug"`
	Status   OrganizationStatus   `db:"status" json:"status"`
	Settings OrganizationSettings `db:"settings" json:"settings"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required,min=2,max=63"`
}

type UpdateOrganizationSettingsRequest struct {
	TriageRequired     *bool               `json:"triage_required"`
	DefaultCurrency    *Currency           `json:"default_currency"`
	WhatsappEnabled    *bool               `json:"whatsapp_enabled"`
	EnabledDepartments map[string]bool     `json:"enabled_departments"`
	DepartmentServices map[string][]string `json:"department_services"`
}
