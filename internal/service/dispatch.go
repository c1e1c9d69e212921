package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/metrics"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	"github.com/sirupsen/logrus"
)

// DispatchService определяет контракт распределения экипажей по инцидентам
type DispatchService interface {
	CreateDispatch(ctx context.Context, incidentID, unitID uuid.UUID, notes string) (*models.Dispatch, error)
	Allocate(ctx context.Context, allocation Allocation) (*models.Dispatch, error)
	DispatchToIncident(ctx context.Context, incident *models.Incident, candidates []Candidate, kind models.DispatchKind, note string) (*models.Dispatch, error)
	GetDispatch(ctx context.Context, id uuid.UUID) (*models.Dispatch, error)
	AcceptDispatch(ctx context.Context, id uuid.UUID) (*models.Dispatch, error)
	RegisterArrival(ctx context.Context, id uuid.UUID) (*models.Dispatch, error)
	RegisterActions(ctx context.Context, id uuid.UUID, actions []string) (*models.Dispatch, error)
	CloseDispatch(ctx context.Context, id uuid.UUID, notes string) (*models.Dispatch, error)
	CancelDispatch(ctx context.Context, id uuid.UUID, notes string) (*models.Dispatch, error)
	FindNearestForIncident(ctx context.Context, incidentID uuid.UUID) ([]Candidate, error)
}

// Allocation - параметры привязки экипажа к инциденту
type Allocation struct {
	IncidentID      uuid.UUID
	UnitID          uuid.UUID
	Kind            models.DispatchKind
	Notes           string
	ReinforcementID *uuid.UUID
}

type dispatchService struct {
	*base
	sm  *StateMachine
	geo *GeoService
}

// CreateDispatch создает обычный выезд
func (s *dispatchService) CreateDispatch(ctx context.Context, incidentID, unitID uuid.UUID, notes string) (*models.Dispatch, error) {
	return s.Allocate(ctx, Allocation{
		IncidentID: incidentID,
		UnitID:     unitID,
		Kind:       models.DispatchKindStandard,
		Notes:      notes,
	})
}

// Allocate занимает экипаж и создает выезд одной атомарной операцией хранилища
func (s *dispatchService) Allocate(ctx context.Context, allocation Allocation) (*models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "Allocate",
		"incident_id": allocation.IncidentID,
		"unit_id":     allocation.UnitID,
		"kind":        allocation.Kind,
	})
	log.Info("Attempting to allocate unit")

	incident, err := s.repos.Incidents.GetByID(ctx, allocation.IncidentID)
	if err != nil {
		return nil, incidentLookupError(allocation.IncidentID, err)
	}
	if incident.Status == models.IncidentFinalized {
		return nil, &PreconditionError{Reason: "incident is already finalized"}
	}

	unit, err := s.repos.Units.GetByID(ctx, allocation.UnitID)
	if err != nil {
		return nil, unitLookupError(allocation.UnitID, err)
	}
	if unit.Status != models.UnitAvailable {
		log.WithField("unit_status", unit.Status).Warn("Unit is not available")
		return nil, &UnitUnavailableError{UnitID: unit.ID, Status: unit.Status}
	}

	if allocation.Kind == "" {
		allocation.Kind = models.DispatchKindStandard
	}
	dispatch := &models.Dispatch{
		IncidentID:      incident.ID,
		UnitID:          unit.ID,
		Kind:            allocation.Kind,
		Status:          models.DispatchSent,
		DispatchedAt:    s.clock(),
		Actions:         []models.ActionEntry{},
		Notes:           allocation.Notes,
		ReinforcementID: allocation.ReinforcementID,
	}
	positions, err := s.repos.Positions.Latest(ctx, []uuid.UUID{unit.ID})
	if err != nil {
		log.WithError(err).Warn("Failed to load unit position, dispatching without distance")
	} else if position, ok := positions[unit.ID]; ok {
		distance := RoundKm(HaversineKm(incident.Latitude, incident.Longitude, position.Latitude, position.Longitude))
		dispatch.DistanceKm = &distance
	}

	if err := s.repos.Dispatches.CreateWithUnitClaim(ctx, dispatch); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			metrics.UnitClaimConflictsTotal.Inc()
			current := unit.Status
			if fresh, getErr := s.repos.Units.GetByID(ctx, unit.ID); getErr == nil {
				current = fresh.Status
			}
			log.Warn("Unit was claimed concurrently")
			return nil, &UnitUnavailableError{UnitID: unit.ID, Status: current}
		}
		if errors.Is(err, models.ErrNotFound) {
			return nil, &NotFoundError{Entity: "unit", ID: unit.ID.String()}
		}
		log.WithError(err).Error("Failed to create dispatch in repository")
		return nil, fmt.Errorf("service: could not create dispatch: %w", err)
	}

	metrics.DispatchesCreatedTotal.WithLabelValues(string(dispatch.Kind)).Inc()
	if dispatch.DistanceKm != nil {
		metrics.DispatchDistanceKm.WithLabelValues(string(dispatch.Kind)).Observe(*dispatch.DistanceKm)
	}
	s.notify(ctx, log, webhook.EventDispatchCreated, "unit:"+unit.ID.String(), dispatch)
	log.WithField("dispatch_id", dispatch.ID).Info("Dispatch created successfully")
	return dispatch, nil
}

// DispatchToIncident пробует кандидатов по порядку и доводит инцидент до dispatched.
// Экипажи, перехваченные параллельным запросом, пропускаются.
func (s *dispatchService) DispatchToIncident(ctx context.Context, incident *models.Incident, candidates []Candidate, kind models.DispatchKind, note string) (*models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "DispatchToIncident",
		"incident_id": incident.ID,
		"candidates":  len(candidates),
	})

	for _, candidate := range candidates {
		dispatch, err := s.Allocate(ctx, Allocation{
			IncidentID: incident.ID,
			UnitID:     candidate.Unit.ID,
			Kind:       kind,
			Notes:      note,
		})
		if err != nil {
			var unavailable *UnitUnavailableError
			if errors.As(err, &unavailable) {
				log.WithField("unit_id", candidate.Unit.ID).Info("Candidate lost, trying next")
				continue
			}
			return nil, err
		}

		if _, err := s.sm.AdvanceTo(ctx, incident.ID, models.IncidentDispatched, note); err != nil {
			// выезд уже создан: инцидент остается в промежуточном состоянии
			log.WithError(err).Warn("Dispatch created but incident could not advance")
			return dispatch, err
		}
		return dispatch, nil
	}

	log.Warn("No candidate could be allocated")
	return nil, &NoUnitAvailableError{IncidentID: incident.ID}
}

func (s *dispatchService) GetDispatch(ctx context.Context, id uuid.UUID) (*models.Dispatch, error) {
	dispatch, err := s.repos.Dispatches.GetByID(ctx, id)
	if err != nil {
		return nil, dispatchLookupError(id, err)
	}
	return dispatch, nil
}

// AcceptDispatch - экипаж подтвердил выезд
func (s *dispatchService) AcceptDispatch(ctx context.Context, id uuid.UUID) (*models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "AcceptDispatch",
		"dispatch_id": id,
	})

	dispatch, err := s.GetDispatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if dispatch.Status != models.DispatchSent {
		return nil, &PreconditionError{Reason: fmt.Sprintf("dispatch is %s, expected sent", dispatch.Status)}
	}
	updated, err := s.repos.Dispatches.Accept(ctx, id, s.clock())
	if err != nil {
		return nil, s.conditionalWriteError(log, err, "dispatch changed concurrently")
	}
	log.Info("Dispatch accepted")
	return updated, nil
}

// RegisterArrival фиксирует прибытие; экипаж переходит в on_scene
func (s *dispatchService) RegisterArrival(ctx context.Context, id uuid.UUID) (*models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "RegisterArrival",
		"dispatch_id": id,
	})

	dispatch, err := s.GetDispatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if dispatch.Status != models.DispatchSent && dispatch.Status != models.DispatchInField {
		return nil, &PreconditionError{Reason: fmt.Sprintf("cannot register arrival for %s dispatch", dispatch.Status)}
	}
	updated, err := s.repos.Dispatches.RecordArrival(ctx, id, s.clock())
	if err != nil {
		return nil, s.conditionalWriteError(log, err, "dispatch changed concurrently")
	}
	log.Info("Arrival registered")
	return updated, nil
}

// RegisterActions дописывает действия в конец списка; существующие записи не меняются
func (s *dispatchService) RegisterActions(ctx context.Context, id uuid.UUID, actions []string) (*models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "RegisterActions",
		"dispatch_id": id,
	})

	now := s.clock()
	entries := make([]models.ActionEntry, 0, len(actions))
	for _, text := range actions {
		if text = strings.TrimSpace(text); text != "" {
			entries = append(entries, models.ActionEntry{Text: text, RecordedAt: now})
		}
	}
	if len(entries) == 0 {
		return nil, &ValidationError{Field: "actions", Reason: "at least one non-empty action is required"}
	}

	dispatch, err := s.GetDispatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if dispatch.Status.Terminal() {
		return nil, &PreconditionError{Reason: "dispatch is already " + string(dispatch.Status)}
	}
	updated, err := s.repos.Dispatches.AppendActions(ctx, id, entries)
	if err != nil {
		return nil, s.conditionalWriteError(log, err, "dispatch was closed concurrently")
	}
	log.WithField("count", len(entries)).Info("Actions registered")
	return updated, nil
}

// CloseDispatch завершает выезд; без зарегистрированных действий закрытие запрещено
func (s *dispatchService) CloseDispatch(ctx context.Context, id uuid.UUID, notes string) (*models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "CloseDispatch",
		"dispatch_id": id,
	})
	log.Info("Attempting to close dispatch")

	dispatch, err := s.GetDispatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if dispatch.Status.Terminal() {
		return nil, &PreconditionError{Reason: "dispatch is already " + string(dispatch.Status)}
	}
	if len(dispatch.Actions) == 0 {
		log.Warn("Refusing to close dispatch without recorded actions")
		return nil, &PreconditionError{Reason: "dispatch has no recorded action"}
	}

	closed, err := s.repos.Dispatches.CompleteWithUnitRelease(ctx, id, notes, s.clock())
	if err != nil {
		return nil, s.conditionalWriteError(log, err, "dispatch changed concurrently")
	}
	s.notify(ctx, log, webhook.EventDispatchCompleted, "unit:"+closed.UnitID.String(), closed)
	log.Info("Dispatch closed, unit released")
	return closed, nil
}

// CancelDispatch отменяет незавершенный выезд и освобождает экипаж
func (s *dispatchService) CancelDispatch(ctx context.Context, id uuid.UUID, notes string) (*models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "CancelDispatch",
		"dispatch_id": id,
	})

	dispatch, err := s.GetDispatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if dispatch.Status.Terminal() {
		return nil, &PreconditionError{Reason: "dispatch is already " + string(dispatch.Status)}
	}
	cancelled, err := s.repos.Dispatches.CancelWithUnitRelease(ctx, id, notes, s.clock())
	if err != nil {
		return nil, s.conditionalWriteError(log, err, "dispatch changed concurrently")
	}
	s.notify(ctx, log, webhook.EventDispatchCancelled, "unit:"+cancelled.UnitID.String(), cancelled)
	log.Info("Dispatch cancelled, unit released")
	return cancelled, nil
}

// FindNearestForIncident ищет свободные экипажи в радиусе по умолчанию от места инцидента
func (s *dispatchService) FindNearestForIncident(ctx context.Context, incidentID uuid.UUID) ([]Candidate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "FindNearestForIncident",
		"incident_id": incidentID,
	})

	incident, err := s.repos.Incidents.GetByID(ctx, incidentID)
	if err != nil {
		return nil, incidentLookupError(incidentID, err)
	}

	pool, err := s.poolFor(ctx, incident)
	if err != nil {
		log.WithError(err).Error("Failed to resolve unit pool")
		return nil, fmt.Errorf("service: could not resolve unit pool: %w", err)
	}
	radius := s.cfg.DispatchRadiusKm
	candidates, err := s.geo.NearestAvailable(ctx, incident.Latitude, incident.Longitude, radius, pool)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		log.Info("No available unit in range")
		return nil, &NoUnitAvailableError{IncidentID: incidentID, RadiusKm: radius}
	}
	return candidates, nil
}

// poolFor - инциденты отдела убийств обслуживает только его пул
func (s *dispatchService) poolFor(ctx context.Context, incident *models.Incident) (UnitPool, error) {
	isHomicide, homicide, err := s.isHomicideDepartment(ctx, incident.DepartmentID)
	if err != nil {
		return UnitPool{}, err
	}
	if isHomicide {
		return UnitPool{DepartmentID: homicide.ID}, nil
	}
	return s.standardPool(ctx)
}

func (s *dispatchService) conditionalWriteError(log *logrus.Entry, err error, reason string) error {
	if errors.Is(err, models.ErrStatusConflict) {
		log.Warn(reason)
		return &PreconditionError{Reason: reason}
	}
	log.WithError(err).Error("Failed to update dispatch in repository")
	return fmt.Errorf("service: could not update dispatch: %w", err)
}

func dispatchLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return &NotFoundError{Entity: "dispatch", ID: id.String()}
	}
	return fmt.Errorf("service: could not get dispatch: %w", err)
}

func unitLookupError(id uuid.UUID, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return &NotFoundError{Entity: "unit", ID: id.String()}
	}
	return fmt.Errorf("service: could not get unit: %w", err)
}
