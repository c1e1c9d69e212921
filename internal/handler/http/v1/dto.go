package v1

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
)

// CreateIncidentRequest DTO для регистрации обращения
// @Description DTO для регистрации обращения
type CreateIncidentRequest struct {
	Type        string     `json:"type" validate:"required,max=120"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty" validate:"max=255"`
	Latitude    float64    `json:"latitude" validate:"latitude"`
	Longitude   float64    `json:"longitude" validate:"longitude"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	CallID      *uuid.UUID `json:"call_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID               uuid.UUID  `json:"id"`
	Protocol         string     `json:"protocol"`
	Type             string     `json:"type"`
	Description      string     `json:"description,omitempty"`
	Location         string     `json:"location,omitempty"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	DepartmentID     uuid.UUID  `json:"department_id"`
	RegisteredAt     time.Time  `json:"registered_at"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	LastTransitionAt time.Time  `json:"last_transition_at"`
}

// IntakeResponse - итог приема: инцидент, ветка маршрутизации и выезд, если он создан
// @Description Итог приема обращения
type IntakeResponse struct {
	Incident *IncidentResponse       `json:"incident"`
	Branch   string                  `json:"branch"`
	Dispatch *models.Dispatch        `json:"dispatch,omitempty"`
	Homicide *service.HomicideReport `json:"homicide,omitempty"`
	Warning  string                  `json:"warning,omitempty"`
}

type StartAttendanceRequest struct {
	OfficerID string `json:"officer_id" validate:"required"`
}

// CreateReinforcementRequest DTO запроса подкрепления
// @Description DTO запроса подкрепления
type CreateReinforcementRequest struct {
	RequesterID string `json:"requester_id" validate:"required"`
	Urgency     int    `json:"urgency" validate:"required,min=1,max=5"`
	Category    string `json:"category,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type FulfillReinforcementRequest struct {
	UnitID            uuid.UUID `json:"unit_id" validate:"required"`
	ResponsibleUserID string    `json:"responsible_user_id" validate:"required"`
	Notes             string    `json:"notes,omitempty"`
}

type CancelReinforcementRequest struct {
	Reason string `json:"reason" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

// CreateDispatchRequest DTO ручного направления экипажа
// @Description DTO ручного направления экипажа
type CreateDispatchRequest struct {
	IncidentID uuid.UUID `json:"incident_id" validate:"required"`
	UnitID     uuid.UUID `json:"unit_id" validate:"required"`
	Notes      string    `json:"notes,omitempty"`
}

type NotesRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ActionsPayload принимает одну строку или список строк
type ActionsPayload []string

func (p *ActionsPayload) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = ActionsPayload{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("actions must be a string or a list of strings")
	}
	*p = list
	return nil
}

type RegisterActionsRequest struct {
	Actions ActionsPayload `json:"actions" validate:"required,min=1" swaggertype:"array,string"`
}

type FinalizeAttendanceRequest struct {
	ActionsText string `json:"actions_text" validate:"required"`
}

// RegisterUnitRequest DTO регистрации экипажа
// @Description DTO регистрации экипажа
type RegisterUnitRequest struct {
	Plate        string    `json:"plate" validate:"required,max=16"`
	CallSign     string    `json:"call_sign" validate:"required,max=32"`
	Type         string    `json:"type,omitempty"`
	Status       string    `json:"status,omitempty" validate:"omitempty,oneof=available maintenance unavailable"`
	DepartmentID uuid.UUID `json:"department_id"`
}

type UpdateUnitStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available maintenance unavailable"`
}

type RecordPositionRequest struct {
	Latitude   float64    `json:"latitude" validate:"latitude"`
	Longitude  float64    `json:"longitude" validate:"longitude"`
	SpeedKmh   float64    `json:"speed_kmh" validate:"min=0"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// UnitResponse DTO экипажа
// @Description DTO экипажа
type UnitResponse struct {
	ID           uuid.UUID `json:"id"`
	Plate        string    `json:"plate"`
	CallSign     string    `json:"call_sign"`
	Type         string    `json:"type,omitempty"`
	Status       string    `json:"status"`
	DepartmentID uuid.UUID `json:"department_id"`
}

// NearbyUnitResponse - экипаж с последней позицией и расстоянием в км
// @Description Экипаж рядом с точкой
type NearbyUnitResponse struct {
	Unit       *UnitResponse `json:"unit"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	DistanceKm float64       `json:"distance_km"`
}

// RegisterCallRequest DTO для регистрации обращения оператором
type RegisterCallRequest struct {
	CallerName    string     `json:"caller_name" validate:"max=120"`
	CallerPhone   string     `json:"caller_phone" validate:"max=40"`
	CallerAddress string     `json:"caller_address,omitempty" validate:"max=255"`
	ReceivedAt    *time.Time `json:"received_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// ExternalCallRequest DTO вызова, переданного внешней системой
type ExternalCallRequest struct {
	ExternalProtocol string     `json:"external_protocol" validate:"required,max=64"`
	SourceSystem     string     `json:"source_system,omitempty" validate:"max=64"`
	IncidentType     string     `json:"incident_type" validate:"required,max=120"`
	Description      string     `json:"description" validate:"required"`
	Location         string     `json:"location" validate:"required,max=255"`
	Latitude         float64    `json:"latitude" validate:"latitude"`
	Longitude        float64    `json:"longitude" validate:"longitude"`
	Priority         string     `json:"priority,omitempty"`
	CallerName       string     `json:"caller_name,omitempty"`
	CallerPhone      string     `json:"caller_phone,omitempty"`
	ReceivedAt       *time.Time `json:"received_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

type ExternalBatchRequest struct {
	Calls []ExternalCallRequest `json:"calls" validate:"required,min=1,max=100,dive"`
}

// ExternalCallResponse DTO итога интеграции внешнего вызова
type ExternalCallResponse struct {
	ExternalProtocol string          `json:"external_protocol"`
	InternalProtocol string          `json:"internal_protocol"`
	Call             *models.Call    `json:"call"`
	Intake           *IntakeResponse `json:"intake"`
}
