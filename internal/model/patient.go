package model

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Patient is a tenant-scoped registry entry. The MRN is unique per
// organization and immutable after registration.
type Patient struct {
	Base
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	MRN            string    `db:"mrn" json:"mrn"`
	FullName       string    `db:"full_name" json:"full_name"`
	Gender         string    `db:"gender" json:"gender"`
	DOB            string    `db:"dob" json:"dob"`
	Phone          string    `db:"phone" json:"phone"`
	Address        string    `db:"address" json:"address"`
}

type CreatePatientRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Gender   string `json:"gender" binding:"required,oneof=male female other"`
	DOB      string `json:"dob" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type UpdatePatientRequest struct {
	FullName *string `json:"full_name"`
	Gender   *string `json:"gender" binding:"omitempty,oneof=male female other"`
	DOB      *string `json:"dob"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type PatientFilters struct {
	OrganizationID uuid.UUID
	SearchTerm     string
	Pagination
}

var mrnPattern = regexp.MustCompile(`^MRN-\d{4}-\d{4}$`)

// NewMRN generates a medical record number of the form MRN-<year>-<4 digits>.
// The random suffix can collide; the storage layer enforces per-tenant
// uniqueness and callers retry on conflict.
func NewMRN(now time.Time) string {
	return fmt.Sprintf("MRN-%d-%04d", now.Year(), 1000+rand.Intn(9000))
}

// ValidMRN reports whether s matches the MRN format.
func ValidMRN(s string) bool {
	return mrnPattern.MatchString(s)
}
