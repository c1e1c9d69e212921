package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/metrics"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/sirupsen/logrus"
)

// lifecycle - единственный допустимый порядок статусов инцидента
var lifecycle = []models.IncidentStatus{
	models.IncidentInitial,
	models.IncidentOpened,
	models.IncidentUnitRequested,
	models.IncidentDispatched,
	models.IncidentInProgress,
	models.IncidentFinalized,
}

func stage(status models.IncidentStatus) int {
	for i, s := range lifecycle {
		if s == status {
			return i
		}
	}
	return -1
}

// CanTransition разрешает только переход в следующий статус
func CanTransition(from, to models.IncidentStatus) bool {
	i := stage(from)
	return i >= 0 && i+1 < len(lifecycle) && lifecycle[i+1] == to
}

// AvailableTransitions возвращает единственный следующий статус (пусто для finalized)
func AvailableTransitions(status models.IncidentStatus) []models.IncidentStatus {
	i := stage(status)
	if i < 0 || i+1 >= len(lifecycle) {
		return []models.IncidentStatus{}
	}
	return []models.IncidentStatus{lifecycle[i+1]}
}

// StateMachine ведет инцидент по статусам и журналу переходов
type StateMachine struct {
	incidents   IncidentRepository
	transitions TransitionRepository
	dispatches  DispatchRepository
	clock       Clock
	logger      *logrus.Logger
}

func NewStateMachine(repos Repositories, clock Clock, logger *logrus.Logger) *StateMachine {
	if clock == nil {
		clock = systemClock
	}
	return &StateMachine{
		incidents:   repos.Incidents,
		transitions: repos.Transitions,
		dispatches:  repos.Dispatches,
		clock:       clock,
		logger:      logger,
	}
}

// Transition переводит инцидент в target. Проигранная гонка за статус дает InvalidTransitionError.
func (m *StateMachine) Transition(ctx context.Context, incidentID uuid.UUID, target models.IncidentStatus, note string) (*models.Incident, error) {
	log := m.logger.WithFields(logrus.Fields{
		"service":     "state_machine",
		"method":      "Transition",
		"incident_id": incidentID,
		"target":      target,
	})

	incident, err := m.incidents.GetByID(ctx, incidentID)
	if err != nil {
		return nil, incidentLookupError(incidentID, err)
	}
	if !CanTransition(incident.Status, target) {
		log.WithField("current", incident.Status).Warn("Rejected invalid transition")
		return nil, &InvalidTransitionError{From: incident.Status, To: target}
	}

	updated, err := m.incidents.ApplyTransition(ctx, incidentID, incident.Status, target, note, m.clock())
	if err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			log.Warn("Incident status changed concurrently")
			return nil, &InvalidTransitionError{From: incident.Status, To: target}
		}
		log.WithError(err).Error("Failed to apply transition")
		return nil, fmt.Errorf("service: could not apply transition: %w", err)
	}

	metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()
	log.WithField("from", incident.Status).Info("Incident transitioned")
	return updated, nil
}

// AdvanceTo проходит по цепочке статусов до target; уже достигнутый статус не ошибка
func (m *StateMachine) AdvanceTo(ctx context.Context, incidentID uuid.UUID, target models.IncidentStatus, note string) (*models.Incident, error) {
	incident, err := m.incidents.GetByID(ctx, incidentID)
	if err != nil {
		return nil, incidentLookupError(incidentID, err)
	}
	for stage(incident.Status) < stage(target) {
		next := lifecycle[stage(incident.Status)+1]
		incident, err = m.Transition(ctx, incidentID, next, note)
		if err != nil {
			return nil, err
		}
	}
	return incident, nil
}

// CanFinalize - статус in_progress и хотя бы один выезд с зарегистрированным действием
func (m *StateMachine) CanFinalize(ctx context.Context, incidentID uuid.UUID) (bool, error) {
	incident, err := m.incidents.GetByID(ctx, incidentID)
	if err != nil {
		return false, incidentLookupError(incidentID, err)
	}
	if incident.Status != models.IncidentInProgress {
		return false, nil
	}
	dispatches, err := m.dispatches.ListByIncident(ctx, incidentID)
	if err != nil {
		return false, fmt.Errorf("service: could not list dispatches: %w", err)
	}
	for _, dispatch := range dispatches {
		if len(dispatch.Actions) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// History возвращает журнал переходов по возрастанию времени
func (m *StateMachine) History(ctx context.Context, incidentID uuid.UUID) ([]*models.TransitionLogEntry, error) {
	if _, err := m.incidents.GetByID(ctx, incidentID); err != nil {
		return nil, incidentLookupError(incidentID, err)
	}
	entries, err := m.transitions.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not list transitions: %w", err)
	}
	return entries, nil
}

func incidentLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return &NotFoundError{Entity: "incident", ID: id.String()}
	}
	return fmt.Errorf("service: could not get incident: %w", err)
}
