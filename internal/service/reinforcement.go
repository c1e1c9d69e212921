package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/metrics"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	"github.com/sirupsen/logrus"
)

// SystemActor - исполнитель автоматического закрепления подкрепления
const SystemActor = "SYSTEM_AUTO"

const defaultReinforcementCategory = "general"

// ReinforcementInput - запрос подкрепления от экипажа на месте
type ReinforcementInput struct {
	IncidentID  uuid.UUID
	RequesterID string
	Urgency     int
	Category    string
	Notes       string
}

// ReinforcementService определяет контракт эскалации по срочности
type ReinforcementService interface {
	RequestReinforcement(ctx context.Context, input ReinforcementInput) (*models.ReinforcementRequest, error)
	FulfillReinforcement(ctx context.Context, requestID, unitID uuid.UUID, responsibleUserID, notes string) (*models.ReinforcementRequest, error)
	CancelReinforcement(ctx context.Context, requestID uuid.UUID, reason, userID string) (*models.ReinforcementRequest, error)
	GetReinforcement(ctx context.Context, id uuid.UUID) (*models.ReinforcementRequest, error)
	ListPending(ctx context.Context) ([]*models.ReinforcementRequest, error)
	List(ctx context.Context, filter models.ReinforcementFilter) ([]*models.ReinforcementRequest, error)
}

type reinforcementService struct {
	*base
	geo      *GeoService
	dispatch DispatchService
}

// RequestReinforcement создает запрос. С уровня AutoDispatchUrgency поиск расширяется
// на все подразделения и ближайший свободный экипаж закрепляется автоматически.
func (s *reinforcementService) RequestReinforcement(ctx context.Context, input ReinforcementInput) (*models.ReinforcementRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "reinforcement",
		"method":      "RequestReinforcement",
		"incident_id": input.IncidentID,
		"urgency":     input.Urgency,
	})
	log.Info("Reinforcement requested")

	if input.IncidentID == uuid.Nil {
		return nil, &ValidationError{Field: "incident_id", Reason: "is required"}
	}
	if strings.TrimSpace(input.RequesterID) == "" {
		return nil, &ValidationError{Field: "requester_id", Reason: "is required"}
	}
	if input.Urgency < 1 || input.Urgency > 5 {
		return nil, &ValidationError{Field: "urgency", Reason: "must be between 1 and 5"}
	}

	incident, err := s.repos.Incidents.GetByID(ctx, input.IncidentID)
	if err != nil {
		return nil, incidentLookupError(input.IncidentID, err)
	}
	// подкрепление - экипаж сверх первого выезда
	if incident.Status != models.IncidentDispatched && incident.Status != models.IncidentInProgress {
		log.WithField("incident_status", incident.Status).Warn("Reinforcement rejected before first dispatch")
		return nil, &PreconditionError{Reason: fmt.Sprintf("incident is %s, expected dispatched or in_progress", incident.Status)}
	}

	category := input.Category
	if category == "" {
		category = defaultReinforcementCategory
	}
	request := &models.ReinforcementRequest{
		IncidentID:  incident.ID,
		RequesterID: input.RequesterID,
		Urgency:     input.Urgency,
		Category:    category,
		Notes:       input.Notes,
		Status:      models.ReinforcementPending,
		RequestedAt: s.clock(),
	}
	if err := s.repos.Reinforcements.Create(ctx, request); err != nil {
		log.WithError(err).Error("Failed to create reinforcement request")
		return nil, fmt.Errorf("service: could not create reinforcement request: %w", err)
	}
	log = log.WithField("request_id", request.ID)
	metrics.ReinforcementsTotal.WithLabelValues("requested").Inc()
	s.audit(ctx, log, "reinforcement_requested", incident.ID, map[string]any{
		"request_id": request.ID,
		"urgency":    request.Urgency,
		"category":   request.Category,
	})
	s.notify(ctx, log, webhook.EventReinforcementRequested, "", request)

	autoDispatch := input.Urgency >= s.cfg.AutoDispatchUrgency
	pool := UnitPool{DepartmentID: incident.DepartmentID}
	if autoDispatch {
		// высокая срочность: экипажи любых подразделений
		pool = UnitPool{}
	}
	candidates, err := s.geo.NearestAvailable(ctx, incident.Latitude, incident.Longitude, 0, pool)
	if err != nil {
		log.WithError(err).Warn("Candidate search failed, request stays pending")
		return request, nil
	}
	log = log.WithField("candidates", len(candidates))

	if !autoDispatch || len(candidates) == 0 {
		log.Info("Reinforcement left pending for dispatcher")
		return request, nil
	}

	for _, candidate := range candidates {
		fulfilled, err := s.fulfill(ctx, log, request, candidate.Unit.ID, SystemActor, "automatic reinforcement")
		if err == nil {
			log.WithField("unit_id", candidate.Unit.ID).Info("Reinforcement auto-fulfilled")
			return fulfilled, nil
		}
		var unavailable *UnitUnavailableError
		if errors.As(err, &unavailable) {
			continue
		}
		log.WithError(err).Warn("Auto-fulfilment stopped, request stays pending")
		break
	}

	current, err := s.repos.Reinforcements.GetByID(ctx, request.ID)
	if err != nil {
		return request, nil
	}
	return current, nil
}

// FulfillReinforcement - ручное закрепление экипажа диспетчером
func (s *reinforcementService) FulfillReinforcement(ctx context.Context, requestID, unitID uuid.UUID, responsibleUserID, notes string) (*models.ReinforcementRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "reinforcement",
		"method":     "FulfillReinforcement",
		"request_id": requestID,
		"unit_id":    unitID,
	})

	if strings.TrimSpace(responsibleUserID) == "" {
		return nil, &ValidationError{Field: "responsible_user_id", Reason: "is required"}
	}
	request, err := s.GetReinforcement(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.fulfill(ctx, log, request, unitID, responsibleUserID, notes)
}

// fulfill - общий путь ручного и автоматического закрепления
func (s *reinforcementService) fulfill(ctx context.Context, log *logrus.Entry, request *models.ReinforcementRequest, unitID uuid.UUID, by, notes string) (*models.ReinforcementRequest, error) {
	if request.Status != models.ReinforcementPending {
		return nil, &PreconditionError{Reason: "reinforcement request is " + string(request.Status)}
	}

	dispatch, err := s.dispatch.Allocate(ctx, Allocation{
		IncidentID:      request.IncidentID,
		UnitID:          unitID,
		Kind:            models.DispatchKindReinforcement,
		Notes:           notes,
		ReinforcementID: &request.ID,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock()
	minutes := int(math.Round(now.Sub(request.RequestedAt).Minutes()))
	if minutes < 0 {
		minutes = 0
	}
	fulfilled, err := s.repos.Reinforcements.MarkFulfilled(ctx, request.ID, unitID, dispatch.ID, by, minutes, now)
	if err != nil {
		// запрос закрыт параллельно: созданный выезд больше не нужен
		if _, cancelErr := s.dispatch.CancelDispatch(ctx, dispatch.ID, "reinforcement no longer pending"); cancelErr != nil {
			log.WithError(cancelErr).Error("Failed to release unit after lost fulfilment")
		}
		if errors.Is(err, models.ErrStatusConflict) {
			return nil, &PreconditionError{Reason: "reinforcement request is no longer pending"}
		}
		return nil, fmt.Errorf("service: could not mark reinforcement fulfilled: %w", err)
	}

	result := "manual"
	if by == SystemActor {
		result = "auto"
	}
	metrics.ReinforcementsTotal.WithLabelValues(result).Inc()
	metrics.ReinforcementResponseMinutes.Observe(float64(minutes))
	s.audit(ctx, log, "reinforcement_fulfilled", request.IncidentID, map[string]any{
		"request_id":       request.ID,
		"unit_id":          unitID,
		"dispatch_id":      dispatch.ID,
		"fulfilled_by":     by,
		"response_minutes": minutes,
	})
	s.notify(ctx, log, webhook.EventReinforcementFulfilled, "unit:"+unitID.String(), fulfilled)
	return fulfilled, nil
}

// CancelReinforcement отменяет ожидающий запрос
func (s *reinforcementService) CancelReinforcement(ctx context.Context, requestID uuid.UUID, reason, userID string) (*models.ReinforcementRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "reinforcement",
		"method":     "CancelReinforcement",
		"request_id": requestID,
	})

	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Reason: "is required"}
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	request, err := s.GetReinforcement(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.ReinforcementPending {
		return nil, &PreconditionError{Reason: "reinforcement request is " + string(request.Status)}
	}

	cancelled, err := s.repos.Reinforcements.MarkCancelled(ctx, requestID, reason, userID, s.clock())
	if err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return nil, &PreconditionError{Reason: "reinforcement request is no longer pending"}
		}
		log.WithError(err).Error("Failed to cancel reinforcement")
		return nil, fmt.Errorf("service: could not cancel reinforcement: %w", err)
	}

	metrics.ReinforcementsTotal.WithLabelValues("cancelled").Inc()
	s.audit(ctx, log, "reinforcement_cancelled", request.IncidentID, map[string]any{
		"request_id": requestID,
		"reason":     reason,
		"by":         userID,
	})
	s.notify(ctx, log, webhook.EventReinforcementCancelled, "", cancelled)
	log.Info("Reinforcement cancelled")
	return cancelled, nil
}

func (s *reinforcementService) GetReinforcement(ctx context.Context, id uuid.UUID) (*models.ReinforcementRequest, error) {
	request, err := s.repos.Reinforcements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &NotFoundError{Entity: "reinforcement", ID: id.String()}
		}
		return nil, fmt.Errorf("service: could not get reinforcement: %w", err)
	}
	return request, nil
}

// ListPending - очередь диспетчера: срочные первыми, затем самые свежие
func (s *reinforcementService) ListPending(ctx context.Context) ([]*models.ReinforcementRequest, error) {
	return s.List(ctx, models.ReinforcementFilter{Status: models.ReinforcementPending})
}

func (s *reinforcementService) List(ctx context.Context, filter models.ReinforcementFilter) ([]*models.ReinforcementRequest, error) {
	requests, err := s.repos.Reinforcements.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: could not list reinforcements: %w", err)
	}
	return requests, nil
}
