package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry - запись бизнес-аудита (решения маршрутизации, уведомления и т.п.)
type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	Kind       string         `json:"kind"`
	IncidentID *uuid.UUID     `json:"incident_id,omitempty"`
	Payload    map[string]any `json:"payload"`
	At         time.Time      `json:"at"`
}
