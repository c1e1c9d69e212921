package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	"github.com/sirupsen/logrus"
)

// homicideChecklist - фиксированный порядок шагов протокола
var homicideChecklist = []models.ChecklistStep{
	models.StepAreaIsolation,
	models.StepForensicsCallout,
	models.StepMedicalExaminerCallout,
	models.StepPhotographerCallout,
	models.StepWitnessCollection,
}

// HomicideReport - итог применения протокола к инциденту
type HomicideReport struct {
	Checklist     []*models.ChecklistItem `json:"checklist"`
	Team          []*models.TeamRequest   `json:"team"`
	Dispatch      *models.Dispatch        `json:"dispatch,omitempty"`
	Perimeter     *models.ScenePerimeter  `json:"perimeter"`
	NotifiedUnits []uuid.UUID             `json:"notified_units"`
}

// HomicideService ведет протокол для инцидентов отдела убийств
type HomicideService struct {
	*base
	geo      *GeoService
	dispatch DispatchService
	keywords TeamKeywords
}

// Process применяет протокол, собирает группу и изолирует место преступления
func (s *HomicideService) Process(ctx context.Context, incident *models.Incident) (*HomicideReport, error) {
	report := &HomicideReport{}

	checklist, err := s.ApplyProtocol(ctx, incident)
	if err != nil {
		return nil, err
	}
	report.Checklist = checklist

	team, dispatch, err := s.RequestSpecializedTeam(ctx, incident)
	if err != nil {
		return report, err
	}
	report.Team = team
	report.Dispatch = dispatch

	perimeter, notified, err := s.PreserveCrimeScene(ctx, incident)
	if err != nil {
		return report, err
	}
	report.Perimeter = perimeter
	report.NotifiedUnits = notified
	return report, nil
}

// ApplyProtocol регистрирует чек-лист и повышает приоритет до high
func (s *HomicideService) ApplyProtocol(ctx context.Context, incident *models.Incident) ([]*models.ChecklistItem, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "homicide",
		"method":      "ApplyProtocol",
		"incident_id": incident.ID,
	})
	log.Info("Applying homicide protocol")

	items := make([]*models.ChecklistItem, 0, len(homicideChecklist))
	for _, step := range homicideChecklist {
		items = append(items, &models.ChecklistItem{
			IncidentID: incident.ID,
			Step:       step,
			Status:     "pending",
		})
	}
	if err := s.repos.Homicide.AddChecklist(ctx, items); err != nil {
		log.WithError(err).Error("Failed to store checklist")
		return nil, fmt.Errorf("service: could not store homicide checklist: %w", err)
	}

	incident.Priority = models.PriorityHigh
	if err := s.repos.Incidents.Update(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to raise incident priority")
		return nil, fmt.Errorf("service: could not update incident priority: %w", err)
	}

	s.audit(ctx, log, "homicide_protocol", incident.ID, map[string]any{
		"checklist_items": len(items),
		"priority":        incident.Priority,
	})
	log.Info("Homicide protocol applied")
	return items, nil
}

// RequestSpecializedTeam регистрирует роли группы и направляет ближайший экипаж отдела убийств
func (s *HomicideService) RequestSpecializedTeam(ctx context.Context, incident *models.Incident) ([]*models.TeamRequest, *models.Dispatch, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "homicide",
		"method":      "RequestSpecializedTeam",
		"incident_id": incident.ID,
	})

	roles := TeamRoles(incident.Description, s.keywords)
	requests := make([]*models.TeamRequest, 0, len(roles))
	for _, role := range roles {
		requests = append(requests, &models.TeamRequest{
			IncidentID: incident.ID,
			Role:       role,
			Priority:   RolePriority(role),
			Status:     "requested",
		})
	}
	if err := s.repos.Homicide.AddTeamRequests(ctx, requests); err != nil {
		log.WithError(err).Error("Failed to store team requests")
		return nil, nil, fmt.Errorf("service: could not store team requests: %w", err)
	}
	log.WithField("roles", roles).Info("Specialized team requested")

	dispatch, err := s.dispatchTeam(ctx, log, incident)
	if err != nil {
		return requests, nil, err
	}
	return requests, dispatch, nil
}

// dispatchTeam - отсутствие свободного экипажа оставляет инцидент в ожидании, это не ошибка
func (s *HomicideService) dispatchTeam(ctx context.Context, log *logrus.Entry, incident *models.Incident) (*models.Dispatch, error) {
	department, err := s.department(ctx, s.cfg.HomicideDepartmentCode)
	if err != nil {
		return nil, fmt.Errorf("service: could not resolve homicide department: %w", err)
	}
	if department == nil {
		log.Warn("Homicide department is not registered, team dispatch skipped")
		return nil, nil
	}

	candidates, err := s.geo.NearestAvailable(ctx, incident.Latitude, incident.Longitude, 0, UnitPool{DepartmentID: department.ID})
	if err != nil {
		return nil, err
	}

	dispatch, err := s.dispatch.DispatchToIncident(ctx, incident, candidates, models.DispatchKindHomicide, "homicide team dispatch")
	if err != nil {
		var none *NoUnitAvailableError
		if errors.As(err, &none) {
			log.Info("No homicide unit available, incident stays pending")
			return nil, nil
		}
		return dispatch, err
	}
	return dispatch, nil
}

// PreserveCrimeScene сохраняет периметр и уведомляет все экипажи поблизости
func (s *HomicideService) PreserveCrimeScene(ctx context.Context, incident *models.Incident) (*models.ScenePerimeter, []uuid.UUID, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "homicide",
		"method":      "PreserveCrimeScene",
		"incident_id": incident.ID,
	})

	perimeter := &models.ScenePerimeter{
		IncidentID:   incident.ID,
		Latitude:     incident.Latitude,
		Longitude:    incident.Longitude,
		RadiusMeters: s.cfg.ScenePerimeterMeters,
	}
	if err := s.repos.Homicide.SavePerimeter(ctx, perimeter); err != nil {
		log.WithError(err).Error("Failed to store scene perimeter")
		return nil, nil, fmt.Errorf("service: could not store scene perimeter: %w", err)
	}

	nearby, err := s.geo.UnitsWithin(ctx, incident.Latitude, incident.Longitude, s.cfg.SceneNotifyRadiusKm)
	if err != nil {
		return perimeter, nil, err
	}

	notified := make([]uuid.UUID, 0, len(nearby))
	for _, candidate := range nearby {
		payload := map[string]any{
			"unit_id":       candidate.Unit.ID,
			"distance_km":   RoundKm(candidate.DistanceKm),
			"radius_meters": perimeter.RadiusMeters,
			"protocol":      incident.Protocol,
		}
		s.audit(ctx, log, "scene_isolation_notice", incident.ID, payload)
		s.notify(ctx, log, webhook.EventSceneIsolation, "unit:"+candidate.Unit.ID.String(), payload)
		notified = append(notified, candidate.Unit.ID)
	}

	log.WithField("notified", len(notified)).Info("Crime scene preserved")
	return perimeter, notified, nil
}
