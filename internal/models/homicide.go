package models

import (
	"time"

	"github.com/google/uuid"
)

type ChecklistStep string

const (
	StepAreaIsolation          ChecklistStep = "area_isolation"
	StepForensicsCallout       ChecklistStep = "forensics_callout"
	StepMedicalExaminerCallout ChecklistStep = "medical_examiner_callout"
	StepPhotographerCallout    ChecklistStep = "photographer_callout"
	StepWitnessCollection      ChecklistStep = "witness_collection"
)

type ChecklistItem struct {
	ID         uuid.UUID     `json:"id"`
	IncidentID uuid.UUID     `json:"incident_id"`
	Step       ChecklistStep `json:"step"`
	Status     string        `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

type TeamRole string

const (
	RoleInvestigator     TeamRole = "investigator"
	RoleForensicAnalyst  TeamRole = "forensic_analyst"
	RoleBallisticsExpert TeamRole = "ballistics_expert"
	RoleMedicalExaminer  TeamRole = "medical_examiner"
	RolePhotographer     TeamRole = "photographer"
)

type TeamRequest struct {
	ID         uuid.UUID `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	Role       TeamRole  `json:"role"`
	Priority   Priority  `json:"priority"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScenePerimeter - периметр изоляции места преступления
type ScenePerimeter struct {
	ID           uuid.UUID `json:"id"`
	IncidentID   uuid.UUID `json:"incident_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters int       `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
}
