package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentStatus - этап жизненного цикла инцидента
type IncidentStatus string

const (
	IncidentInitial       IncidentStatus = "initial"
	IncidentOpened        IncidentStatus = "opened"
	IncidentUnitRequested IncidentStatus = "unit_requested"
	IncidentDispatched    IncidentStatus = "dispatched"
	IncidentInProgress    IncidentStatus = "in_progress"
	IncidentFinalized     IncidentStatus = "finalized"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Incident struct {
	ID               uuid.UUID      `json:"id"`
	Protocol         string         `json:"protocol"`
	Type             string         `json:"type"`
	Description      string         `json:"description"`
	Location         string         `json:"location"`
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	Status           IncidentStatus `json:"status"`
	Priority         Priority       `json:"priority"`
	RegisteredAt     time.Time      `json:"registered_at"`
	ClosedAt         *time.Time     `json:"closed_at,omitempty"`
	DepartmentID     uuid.UUID      `json:"department_id"`
	CallID           *uuid.UUID     `json:"call_id,omitempty"`
	Notes            string         `json:"notes"`
	LastTransitionAt time.Time      `json:"last_transition_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TransitionLogEntry - запись журнала переходов, только добавление
type TransitionLogEntry struct {
	ID         uuid.UUID      `json:"id"`
	IncidentID uuid.UUID      `json:"incident_id"`
	From       IncidentStatus `json:"from"`
	To         IncidentStatus `json:"to"`
	Note       string         `json:"note"`
	At         time.Time      `json:"at"`
}

// IncidentFilter ограничивает выборку инцидентов
type IncidentFilter struct {
	Status   IncidentStatus
	CallID   *uuid.UUID
	Page     int
	PageSize int
}
