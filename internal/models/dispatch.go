package models

import (
	"time"

	"github.com/google/uuid"
)

type DispatchStatus string

const (
	DispatchSent      DispatchStatus = "sent"
	DispatchInField   DispatchStatus = "in_field"
	DispatchOnScene   DispatchStatus = "on_scene"
	DispatchCompleted DispatchStatus = "completed"
	DispatchCancelled DispatchStatus = "cancelled"
)

// Terminal сообщает, освобожден ли экипаж по этому выезду
func (s DispatchStatus) Terminal() bool {
	return s == DispatchCompleted || s == DispatchCancelled
}

type DispatchKind string

const (
	DispatchKindStandard      DispatchKind = "standard"
	DispatchKindReinforcement DispatchKind = "reinforcement"
	DispatchKindHomicide      DispatchKind = "homicide"
)

type ActionEntry struct {
	Text       string    `json:"text"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Dispatch - привязка одного экипажа к одному инциденту
type Dispatch struct {
	ID                  uuid.UUID      `json:"id"`
	IncidentID          uuid.UUID      `json:"incident_id"`
	UnitID              uuid.UUID      `json:"unit_id"`
	Kind                DispatchKind   `json:"kind"`
	Status              DispatchStatus `json:"status"`
	DispatchedAt        time.Time      `json:"dispatched_at"`
	AcceptedAt          *time.Time     `json:"accepted_at,omitempty"`
	ArrivedAt           *time.Time     `json:"arrived_at,omitempty"`
	AttendanceStartedAt *time.Time     `json:"attendance_started_at,omitempty"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
	Actions             []ActionEntry  `json:"actions"`
	DistanceKm          *float64       `json:"distance_km,omitempty"`
	Notes               string         `json:"notes"`
	ReinforcementID     *uuid.UUID     `json:"reinforcement_id,omitempty"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
