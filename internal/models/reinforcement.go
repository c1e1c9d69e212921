package models

import (
	"time"

	"github.com/google/uuid"
)

type ReinforcementStatus string

const (
	ReinforcementPending   ReinforcementStatus = "pending"
	ReinforcementFulfilled ReinforcementStatus = "fulfilled"
	ReinforcementCancelled ReinforcementStatus = "cancelled"
)

// ReinforcementRequest - запрос подкрепления с уровнем срочности 1..5
type ReinforcementRequest struct {
	ID              uuid.UUID           `json:"id"`
	IncidentID      uuid.UUID           `json:"incident_id"`
	RequesterID     string              `json:"requester_id"`
	Urgency         int                 `json:"urgency"`
	Category        string              `json:"category"`
	Notes           string              `json:"notes"`
	Status          ReinforcementStatus `json:"status"`
	RequestedAt     time.Time           `json:"requested_at"`
	FulfilledAt     *time.Time          `json:"fulfilled_at,omitempty"`
	AssignedUnitID  *uuid.UUID          `json:"assigned_unit_id,omitempty"`
	DispatchID      *uuid.UUID          `json:"dispatch_id,omitempty"`
	FulfilledBy     string              `json:"fulfilled_by,omitempty"`
	ResponseMinutes *int                `json:"response_minutes,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	CancelledBy     string              `json:"cancelled_by,omitempty"`
}

type ReinforcementFilter struct {
	Status     ReinforcementStatus
	IncidentID uuid.UUID
	MinUrgency int
}
