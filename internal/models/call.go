package models

import (
	"time"

	"github.com/google/uuid"
)

// Call - обращение в центр приема вызовов; из него порождаются инциденты
type Call struct {
	ID               uuid.UUID `json:"id"`
	CallerName       string    `json:"caller_name"`
	CallerPhone      string    `json:"caller_phone"`
	CallerAddress    string    `json:"caller_address"`
	ReceivedAt       time.Time `json:"received_at"`
	Notes            string    `json:"notes"`
	SourceSystem     string    `json:"source_system"`
	ExternalProtocol string    `json:"external_protocol,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// CallFilter - интервал по времени приема, границы включительно
type CallFilter struct {
	From *time.Time
	To   *time.Time
}
