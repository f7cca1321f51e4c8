package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VisitStatus is the departmental stage a visit is currently in. Queue
// membership is derived from status alone: the triage screen lists visits in
// "triage", the doctor screen lists "consultation", and so on.
type VisitStatus string

const (
	VisitStatusTriage       VisitStatus = "triage"
	VisitStatusConsultation VisitStatus = "consultation"
	VisitStatusLab          VisitStatus = "lab"
	VisitStatusPharmacy     VisitStatus = "pharmacy"
	VisitStatusCompleted    VisitStatus = "completed"
)

// visitTransitions is the exhaustive forward-only transition table. There is
// no reopen or cancel; completed is terminal.
var visitTransitions = map[VisitStatus]map[VisitStatus]struct{}{
	VisitStatusTriage: {
		VisitStatusConsultation: {},
	},
	VisitStatusConsultation: {
		VisitStatusLab:       {},
		VisitStatusPharmacy:  {},
		VisitStatusCompleted: {},
	},
	VisitStatusLab: {
		VisitStatusPharmacy: {},
	},
	VisitStatusPharmacy: {
		VisitStatusCompleted: {},
	},
	VisitStatusCompleted: {},
}

// CanTransition reports whether moving from one status to another is legal.
func (s VisitStatus) CanTransition(to VisitStatus) bool {
	_, ok := visitTransitions[s][to]
	return ok
}

func (s VisitStatus) Terminal() bool { return s == VisitStatusCompleted }

// NextAfterConsultation computes the stage a finalized consultation routes
// to. Lab orders take precedence over prescriptions; with neither, the visit
// completes. The branch is deterministic, not a user choice.
func NextAfterConsultation(labOrders, prescriptions int) VisitStatus {
	switch {
	case labOrders > 0:
		return VisitStatusLab
	case prescriptions > 0:
		return VisitStatusPharmacy
	default:
		return VisitStatusCompleted
	}
}

// NextAfterLab is the lab verify-and-forward rule: a visit that reached the
// lab always proceeds to pharmacy, even with zero prescriptions. This is
// deliberately asymmetric with NextAfterConsultation and must not be
// "corrected" to a conditional branch.
func NextAfterLab() VisitStatus { return VisitStatusPharmacy }

// Vitals recorded at triage.
type Vitals struct {
	Temp  float64 `json:"temp"`
	BP    string  `json:"bp"`
	Pulse int     `json:"pulse"`
	SpO2  int     `json:"spo2"`
}

// Visit is one clinical encounter for a patient.
type Visit struct {
	Base
	OrganizationID uuid.UUID   `db:"organization_id" json:"organization_id"`
	PatientID      uuid.UUID   `db:"patient_id" json:"patient_id"`
	Status         VisitStatus `db:"status" json:"status"`

	// Patient is populated on queue reads, not stored on the visit row.
	Patient *Patient `db:"-" json:"patient,omitempty"`
}

// Visit event stages. Each stage that writes clinical content appends one
// visit_events row keyed by stage, so stages never overwrite each other and
// remain independently addressable.
const (
	VisitStageTriage       = "triage"
	VisitStageConsultation = "consultation"
	VisitStageLab          = "lab"
	VisitStageDispense     = "dispense"
)

type VisitEvent struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	OrganizationID uuid.UUID       `db:"organization_id" json:"organization_id"`
	VisitID        uuid.UUID       `db:"visit_id" json:"visit_id"`
	Stage          string          `db:"stage" json:"stage"`
	RecordedBy     uuid.UUID       `db:"recorded_by" json:"recorded_by"`
	Payload        json.RawMessage `db:"payload" json:"payload"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// ConsultationNote is the doctor's encounter note.
type ConsultationNote struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
}

type Prescription struct {
	Category string `json:"category"`
	Drug     string `json:"drug"`
	Dosage   string `json:"dosage"`
}

type RecordVitalsRequest struct {
	Temp  float64 `json:"temp" binding:"required"`
	BP    string  `json:"bp" binding:"required"`
	Pulse int     `json:"pulse" binding:"required"`
	SpO2  int     `json:"spo2" binding:"required"`
}

type FinalizeConsultationRequest struct {
	Note          ConsultationNote `json:"note"`
	LabOrders     []string         `json:"lab_orders"`
	Prescriptions []Prescription   `json:"prescriptions"`
}

type LabResult struct {
	Test   string `json:"test"`
	Result string `json:"result"`
}

type ForwardLabRequest struct {
	Results []LabResult `json:"results"`
}

type DispenseLine struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,gt=0"`
}

type DispenseRequest struct {
	Lines []DispenseLine `json:"lines"`
}

type StartVisitRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
}

type VisitFilters struct {
	OrganizationID uuid.UUID
	PatientID      uuid.UUID
	Status         VisitStatus
}
