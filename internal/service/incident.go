package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// IncidentDetails - карточка инцидента со всеми связанными записями
type IncidentDetails struct {
	Incident             *models.Incident               `json:"incident"`
	Department           *models.Department             `json:"department,omitempty"`
	Dispatches           []*models.Dispatch             `json:"dispatches"`
	History              []*models.TransitionLogEntry   `json:"history"`
	Reinforcements       []*models.ReinforcementRequest `json:"reinforcements"`
	Checklist            []*models.ChecklistItem        `json:"checklist"`
	Team                 []*models.TeamRequest          `json:"team"`
	AvailableTransitions []models.IncidentStatus        `json:"available_transitions"`
	CanFinalize          bool                           `json:"can_finalize"`
}

// IncidentService определяет контракт чтения инцидентов
type IncidentService interface {
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	History(ctx context.Context, id uuid.UUID) ([]*models.TransitionLogEntry, error)
	ConsultIncident(ctx context.Context, id uuid.UUID) (*IncidentDetails, error)
}

type incidentService struct {
	*base
	sm    *StateMachine
	cache IncidentCache
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	if s.cache != nil {
		cached, err := s.cache.GetIncidentFromCache(ctx, id)
		if err != nil {
			log.WithError(err).Warn("Failed to read incident cache")
		} else if cached != nil {
			log.Debug("Incident served from cache")
			return cached, nil
		}
	}

	incident, err := s.repos.Incidents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("Incident not found")
		} else {
			log.WithError(err).Error("Failed to get incident in repository")
		}
		return nil, incidentLookupError(id, err)
	}

	if s.cache != nil {
		if err := s.cache.SetIncidentCache(ctx, incident); err != nil {
			log.WithError(err).Warn("Failed to cache incident")
		}
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      filter.Page,
		"page_size": filter.PageSize,
		"status":    filter.Status,
	})
	log.Info("Listing incidents")

	incidents, err := s.repos.Incidents.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

func (s *incidentService) History(ctx context.Context, id uuid.UUID) ([]*models.TransitionLogEntry, error) {
	return s.sm.History(ctx, id)
}

// ConsultIncident собирает карточку инцидента; связанные записи читаются параллельно
func (s *incidentService) ConsultIncident(ctx context.Context, id uuid.UUID) (*IncidentDetails, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "ConsultIncident",
		"incident_id": id,
	})

	// голова карточки читается через кеш; связанные записи всегда из хранилища
	incident, err := s.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &IncidentDetails{
		Incident:             incident,
		AvailableTransitions: AvailableTransitions(incident.Status),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if incident.DepartmentID == uuid.Nil {
			return nil
		}
		department, err := s.repos.Departments.GetByID(gctx, incident.DepartmentID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("department: %w", err)
		}
		details.Department = department
		return nil
	})
	g.Go(func() error {
		dispatches, err := s.repos.Dispatches.ListByIncident(gctx, id)
		if err != nil {
			return fmt.Errorf("dispatches: %w", err)
		}
		details.Dispatches = dispatches
		return nil
	})
	g.Go(func() error {
		history, err := s.repos.Transitions.ListByIncident(gctx, id)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		details.History = history
		return nil
	})
	g.Go(func() error {
		requests, err := s.repos.Reinforcements.List(gctx, models.ReinforcementFilter{IncidentID: id})
		if err != nil {
			return fmt.Errorf("reinforcements: %w", err)
		}
		details.Reinforcements = requests
		return nil
	})
	g.Go(func() error {
		checklist, err := s.repos.Homicide.ListChecklist(gctx, id)
		if err != nil {
			return fmt.Errorf("checklist: %w", err)
		}
		details.Checklist = checklist
		return nil
	})
	g.Go(func() error {
		team, err := s.repos.Homicide.ListTeamRequests(gctx, id)
		if err != nil {
			return fmt.Errorf("team: %w", err)
		}
		details.Team = team
		return nil
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Failed to load incident details")
		return nil, fmt.Errorf("service: could not load incident details: %w", err)
	}

	if incident.Status == models.IncidentInProgress {
		for _, dispatch := range details.Dispatches {
			if len(dispatch.Actions) > 0 {
				details.CanFinalize = true
				break
			}
		}
	}
	return details, nil
}
