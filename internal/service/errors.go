package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// NotFoundError - сущность не найдена
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError - отсутствующий или некорректный ввод
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type InvalidTransitionError struct {
	From models.IncidentStatus
	To   models.IncidentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

type UnitUnavailableError struct {
	UnitID uuid.UUID
	Status models.UnitStatus
}

func (e *UnitUnavailableError) Error() string {
	return fmt.Sprintf("unit %s is not available (status %s)", e.UnitID, e.Status)
}

// PreconditionError - операция недопустима в текущем состоянии
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

type NoUnitAvailableError struct {
	IncidentID uuid.UUID
	RadiusKm   float64
}

func (e *NoUnitAvailableError) Error() string {
	if e.RadiusKm <= 0 {
		return fmt.Sprintf("no available unit for incident %s", e.IncidentID)
	}
	return fmt.Sprintf("no available unit within %.2f km of incident %s", e.RadiusKm, e.IncidentID)
}
