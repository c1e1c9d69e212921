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

const (
	BranchHomicide = "homicide"
	BranchStandard = "standard"
)

// NewIncident - данные нового обращения
type NewIncident struct {
	Type        string
	Description string
	Location    string
	Latitude    float64
	Longitude   float64
	Priority    models.Priority
	CallID      *uuid.UUID
	Notes       string
}

// IntakeResult - итог приема инцидента
type IntakeResult struct {
	Incident *models.Incident `json:"incident"`
	Branch   string           `json:"branch"`
	Dispatch *models.Dispatch `json:"dispatch,omitempty"`
	Homicide *HomicideReport  `json:"homicide,omitempty"`
}

// FlowService определяет контракт приема и сопровождения инцидентов
type FlowService interface {
	ProcessNewIncident(ctx context.Context, input NewIncident) (*IntakeResult, error)
	StartAttendance(ctx context.Context, incidentID uuid.UUID, officerID string) (*models.Incident, error)
	FinalizeAttendance(ctx context.Context, dispatchID uuid.UUID, actionsText string) (*models.Incident, error)
	RetryPending(ctx context.Context) (int, error)
}

type flowService struct {
	*base
	sm       *StateMachine
	geo      *GeoService
	dispatch DispatchService
	homicide *HomicideService
	classify Classifier
}

// ProcessNewIncident регистрирует инцидент, классифицирует и пытается сразу направить экипаж.
// Сбой на середине не откатывается: инцидент остается в допустимом промежуточном статусе.
func (s *flowService) ProcessNewIncident(ctx context.Context, input NewIncident) (*IntakeResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "flow",
		"method":  "ProcessNewIncident",
		"type":    input.Type,
	})
	log.Info("Processing new incident")

	if err := validateNewIncident(input); err != nil {
		return nil, err
	}

	now := s.clock()
	protocol, err := nextProtocol(ctx, s.repos.Incidents, now)
	if err != nil {
		log.WithError(err).Error("Failed to allocate protocol")
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	incident := &models.Incident{
		Protocol:         protocol,
		Type:             strings.TrimSpace(input.Type),
		Description:      input.Description,
		Location:         input.Location,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		Status:           models.IncidentInitial,
		Priority:         priority,
		RegisteredAt:     now,
		CallID:           input.CallID,
		Notes:            input.Notes,
		LastTransitionAt: now,
	}
	if err := s.repos.Incidents.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	log = log.WithFields(logrus.Fields{"incident_id": incident.ID, "protocol": protocol})

	opened, err := s.sm.Transition(ctx, incident.ID, models.IncidentOpened, "incident registered")
	if err != nil {
		return nil, err
	}
	incident = opened

	branch := BranchStandard
	departmentCode := s.cfg.StandardDepartmentCode
	if s.classify(incident.Type) {
		branch = BranchHomicide
		departmentCode = s.cfg.HomicideDepartmentCode
	}
	department, err := s.department(ctx, departmentCode)
	if err != nil {
		log.WithError(err).Error("Failed to resolve responsible department")
		return nil, fmt.Errorf("service: could not resolve department: %w", err)
	}
	if department != nil {
		incident.DepartmentID = department.ID
		if err := s.repos.Incidents.Update(ctx, incident); err != nil {
			log.WithError(err).Error("Failed to assign department")
			return nil, fmt.Errorf("service: could not assign department: %w", err)
		}
	} else {
		log.WithField("department_code", departmentCode).Warn("Responsible department is not registered")
	}

	result := &IntakeResult{Branch: branch}
	decision := map[string]any{
		"branch":          branch,
		"department_code": departmentCode,
		"protocol":        protocol,
	}

	var flowErr error
	if branch == BranchHomicide {
		flowErr = s.routeHomicide(ctx, log, incident, result, decision)
	} else {
		flowErr = s.routeStandard(ctx, log, incident, result, decision)
	}

	s.audit(ctx, log, "routing_decision", incident.ID, decision)

	current, err := s.repos.Incidents.GetByID(ctx, incident.ID)
	if err != nil {
		return nil, incidentLookupError(incident.ID, err)
	}
	result.Incident = current

	outcome := branch
	if branch == BranchStandard {
		outcome = "pending"
		if result.Dispatch != nil {
			outcome = "dispatched"
		}
	}
	metrics.IncidentsCreatedTotal.WithLabelValues(outcome).Inc()
	s.notify(ctx, log, webhook.EventIncidentCreated, "", result)

	if flowErr != nil {
		log.WithError(flowErr).Warn("Incident registered but routing did not complete")
		return result, flowErr
	}
	log.WithField("status", current.Status).Info("Incident processed successfully")
	return result, nil
}

func (s *flowService) routeHomicide(ctx context.Context, log *logrus.Entry, incident *models.Incident, result *IntakeResult, decision map[string]any) error {
	if _, err := s.sm.Transition(ctx, incident.ID, models.IncidentUnitRequested, "routed to homicide department"); err != nil {
		decision["error"] = err.Error()
		return err
	}
	report, err := s.homicide.Process(ctx, incident)
	result.Homicide = report
	if report != nil && report.Dispatch != nil {
		result.Dispatch = report.Dispatch
		decision["unit_id"] = report.Dispatch.UnitID
	}
	if err != nil {
		decision["error"] = err.Error()
		return err
	}
	log.Info("Incident routed to homicide protocol")
	return nil
}

func (s *flowService) routeStandard(ctx context.Context, log *logrus.Entry, incident *models.Incident, result *IntakeResult, decision map[string]any) error {
	radius := s.cfg.DispatchRadiusKm
	decision["radius_km"] = radius

	// экипажи отдела убийств не участвуют в обычном подборе, они остаются в резерве протокола
	pool, err := s.standardPool(ctx)
	if err != nil {
		decision["error"] = err.Error()
		return fmt.Errorf("service: could not resolve unit pool: %w", err)
	}
	candidates, err := s.geo.NearestAvailable(ctx, incident.Latitude, incident.Longitude, radius, pool)
	if err != nil {
		decision["error"] = err.Error()
		return err
	}

	if len(candidates) > 0 {
		dispatch, err := s.dispatch.DispatchToIncident(ctx, incident, candidates, models.DispatchKindStandard, "nearest available unit")
		if err == nil || dispatch != nil {
			result.Dispatch = dispatch
			decision["unit_id"] = dispatch.UnitID
			if dispatch.DistanceKm != nil {
				decision["distance_km"] = *dispatch.DistanceKm
			}
			return err
		}
		var none *NoUnitAvailableError
		if !errors.As(err, &none) {
			decision["error"] = err.Error()
			return err
		}
	}

	decision["unit_id"] = nil
	if _, err := s.sm.Transition(ctx, incident.ID, models.IncidentUnitRequested, "no unit available within radius"); err != nil {
		decision["error"] = err.Error()
		return err
	}
	log.Info("No unit available, incident left pending")
	return nil
}

// StartAttendance - экипаж начал работу на месте
func (s *flowService) StartAttendance(ctx context.Context, incidentID uuid.UUID, officerID string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "flow",
		"method":      "StartAttendance",
		"incident_id": incidentID,
		"officer_id":  officerID,
	})

	if strings.TrimSpace(officerID) == "" {
		return nil, &ValidationError{Field: "officer_id", Reason: "is required"}
	}
	incident, err := s.repos.Incidents.GetByID(ctx, incidentID)
	if err != nil {
		return nil, incidentLookupError(incidentID, err)
	}
	if incident.Status != models.IncidentDispatched {
		return nil, &PreconditionError{Reason: fmt.Sprintf("incident is %s, expected dispatched", incident.Status)}
	}

	updated, err := s.sm.Transition(ctx, incidentID, models.IncidentInProgress, "attendance started by "+officerID)
	if err != nil {
		return nil, err
	}

	dispatches, err := s.repos.Dispatches.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not list dispatches: %w", err)
	}
	for _, dispatch := range dispatches {
		if dispatch.Status.Terminal() {
			continue
		}
		if _, err := s.repos.Dispatches.MarkAttendanceStarted(ctx, dispatch.ID, s.clock()); err != nil {
			log.WithError(err).Warn("Failed to stamp attendance start")
		}
		break
	}

	log.Info("Attendance started")
	return updated, nil
}

// FinalizeAttendance закрывает выезд и инцидент. Проверка CanFinalize выполняется
// до записи итогового текста: нужен хотя бы один ранее зарегистрированный шаг.
func (s *flowService) FinalizeAttendance(ctx context.Context, dispatchID uuid.UUID, actionsText string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "flow",
		"method":      "FinalizeAttendance",
		"dispatch_id": dispatchID,
	})
	log.Info("Attempting to finalize attendance")

	if strings.TrimSpace(actionsText) == "" {
		return nil, &ValidationError{Field: "actions", Reason: "final report text is required"}
	}
	dispatch, err := s.dispatch.GetDispatch(ctx, dispatchID)
	if err != nil {
		return nil, err
	}

	ok, err := s.sm.CanFinalize(ctx, dispatch.IncidentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warn("Incident cannot be finalized yet")
		return nil, &PreconditionError{Reason: "incident must be in progress with at least one recorded action"}
	}

	if _, err := s.dispatch.RegisterActions(ctx, dispatchID, []string{actionsText}); err != nil {
		return nil, err
	}
	if _, err := s.dispatch.CloseDispatch(ctx, dispatchID, "attendance finalized"); err != nil {
		return nil, err
	}

	// остальные выезды по инциденту больше не нужны
	others, err := s.repos.Dispatches.ListByIncident(ctx, dispatch.IncidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to list remaining dispatches")
	}
	for _, other := range others {
		if other.ID == dispatchID || other.Status.Terminal() {
			continue
		}
		if _, err := s.dispatch.CancelDispatch(ctx, other.ID, "incident finalized"); err != nil {
			log.WithError(err).WithField("other_dispatch_id", other.ID).Warn("Failed to release remaining dispatch")
		}
	}

	incident, err := s.sm.Transition(ctx, dispatch.IncidentID, models.IncidentFinalized, "attendance finalized")
	if err != nil {
		return nil, err
	}
	log.WithField("incident_id", incident.ID).Info("Attendance finalized")
	return incident, nil
}

// RetryPending повторяет подбор экипажа для инцидентов в unit_requested без активного выезда
func (s *flowService) RetryPending(ctx context.Context) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "flow",
		"method":  "RetryPending",
	})

	pending, err := s.repos.Incidents.List(ctx, models.IncidentFilter{Status: models.IncidentUnitRequested})
	if err != nil {
		log.WithError(err).Error("Failed to list pending incidents")
		return 0, fmt.Errorf("service: could not list pending incidents: %w", err)
	}

	dispatched := 0
	for _, incident := range pending {
		if err := ctx.Err(); err != nil {
			return dispatched, err
		}
		ok, err := s.retryOne(ctx, incident)
		if err != nil {
			log.WithError(err).WithField("incident_id", incident.ID).Warn("Retry failed")
			continue
		}
		if ok {
			dispatched++
		}
	}

	log.WithFields(logrus.Fields{"pending": len(pending), "dispatched": dispatched}).Info("Pending sweep finished")
	return dispatched, nil
}

func (s *flowService) retryOne(ctx context.Context, incident *models.Incident) (bool, error) {
	dispatches, err := s.repos.Dispatches.ListByIncident(ctx, incident.ID)
	if err != nil {
		return false, err
	}
	for _, dispatch := range dispatches {
		if !dispatch.Status.Terminal() {
			return false, nil
		}
	}

	isHomicide, homicide, err := s.isHomicideDepartment(ctx, incident.DepartmentID)
	if err != nil {
		return false, err
	}
	kind := models.DispatchKindStandard
	radius := s.cfg.DispatchRadiusKm
	var pool UnitPool
	if isHomicide {
		kind = models.DispatchKindHomicide
		radius = 0
		pool = UnitPool{DepartmentID: homicide.ID}
	} else if pool, err = s.standardPool(ctx); err != nil {
		return false, err
	}

	candidates, err := s.geo.NearestAvailable(ctx, incident.Latitude, incident.Longitude, radius, pool)
	if err != nil || len(candidates) == 0 {
		return false, err
	}
	if _, err := s.dispatch.DispatchToIncident(ctx, incident, candidates, kind, "pending sweep"); err != nil {
		var none *NoUnitAvailableError
		if errors.As(err, &none) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func validateNewIncident(input NewIncident) error {
	if strings.TrimSpace(input.Type) == "" {
		return &ValidationError{Field: "type", Reason: "is required"}
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	switch input.Priority {
	case "", models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return &ValidationError{Field: "priority", Reason: "must be low, medium or high"}
	}
	return nil
}
