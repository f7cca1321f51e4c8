package model

import "github.com/google/uuid"

// PatientDocument is a metadata row pointing at an object in the storage
// bucket; the blob itself lives behind the storage boundary.
type PatientDocument struct {
	Base
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	Name           string    `db:"name" json:"name"`
	FileType       string    `db:"file_type" json:"file_type"`
	FileSize       int64     `db:"file_size" json:"file_size"`
	StoragePath    string    `db:"storage_path" json:"storage_path"`
}
