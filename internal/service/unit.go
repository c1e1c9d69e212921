package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	"github.com/sirupsen/logrus"
)

// UnitService определяет контракт реестра экипажей и их позиций
type UnitService interface {
	RegisterUnit(ctx context.Context, unit *models.Unit) error
	GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UnitStatus) (*models.Unit, error)
	RecordPosition(ctx context.Context, position *models.Position) error
	ListNearby(ctx context.Context, lat, lon, radiusKm float64, onlyAvailable bool) ([]Candidate, error)
}

type unitService struct {
	*base
	geo *GeoService
}

// RegisterUnit регистрирует экипаж; номер и позывной уникальны
func (s *unitService) RegisterUnit(ctx context.Context, unit *models.Unit) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "unit",
		"method":    "RegisterUnit",
		"plate":     unit.Plate,
		"call_sign": unit.CallSign,
	})
	log.Info("Attempting to register unit")

	unit.Plate = strings.TrimSpace(unit.Plate)
	unit.CallSign = strings.TrimSpace(unit.CallSign)
	if unit.Plate == "" {
		return &ValidationError{Field: "plate", Reason: "is required"}
	}
	if unit.CallSign == "" {
		return &ValidationError{Field: "call_sign", Reason: "is required"}
	}
	if unit.Status == "" {
		unit.Status = models.UnitAvailable
	}
	if unit.DepartmentID != uuid.Nil {
		if _, err := s.repos.Departments.GetByID(ctx, unit.DepartmentID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return &NotFoundError{Entity: "department", ID: unit.DepartmentID.String()}
			}
			return fmt.Errorf("service: could not get department: %w", err)
		}
	}

	if err := s.repos.Units.Create(ctx, unit); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			log.Warn("Unit plate or call sign already registered")
			return &ValidationError{Field: "plate", Reason: "plate or call sign already registered"}
		}
		log.WithError(err).Error("Failed to create unit in repository")
		return fmt.Errorf("service: could not create unit: %w", err)
	}

	log.WithField("unit_id", unit.ID).Info("Unit registered successfully")
	return nil
}

func (s *unitService) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	unit, err := s.repos.Units.GetByID(ctx, id)
	if err != nil {
		return nil, unitLookupError(id, err)
	}
	return unit, nil
}

// UpdateStatus - ручная смена статуса; en_route и on_scene выставляет только распределение
func (s *unitService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UnitStatus) (*models.Unit, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "unit",
		"method":  "UpdateStatus",
		"unit_id": id,
		"target":  status,
	})

	switch status {
	case models.UnitAvailable, models.UnitMaintenance, models.UnitUnavailable:
	default:
		return nil, &ValidationError{Field: "status", Reason: "must be available, maintenance or unavailable"}
	}

	unit, err := s.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Dispatches.ActiveByUnit(ctx, id); err == nil {
		log.Warn("Unit has an active dispatch")
		return nil, &UnitUnavailableError{UnitID: id, Status: unit.Status}
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service: could not check active dispatch: %w", err)
	}
	if unit.Status == status {
		return unit, nil
	}

	updated, err := s.repos.Units.UpdateStatus(ctx, id, unit.Status, status)
	if err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			current := unit.Status
			if fresh, getErr := s.repos.Units.GetByID(ctx, id); getErr == nil {
				current = fresh.Status
			}
			log.Warn("Unit status changed concurrently")
			return nil, &UnitUnavailableError{UnitID: id, Status: current}
		}
		log.WithError(err).Error("Failed to update unit status")
		return nil, fmt.Errorf("service: could not update unit status: %w", err)
	}

	log.WithField("from", unit.Status).Info("Unit status updated")
	return updated, nil
}

// RecordPosition добавляет отметку GPS; запись только дописывается
func (s *unitService) RecordPosition(ctx context.Context, position *models.Position) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "unit",
		"method":  "RecordPosition",
		"unit_id": position.UnitID,
	})

	if position.Latitude < -90 || position.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if position.Longitude < -180 || position.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	if position.SpeedKmh < 0 {
		return &ValidationError{Field: "speed_kmh", Reason: "must not be negative"}
	}
	if _, err := s.GetUnit(ctx, position.UnitID); err != nil {
		return err
	}
	if position.RecordedAt.IsZero() {
		position.RecordedAt = s.clock()
	}

	if err := s.repos.Positions.Append(ctx, position); err != nil {
		log.WithError(err).Error("Failed to append position")
		return fmt.Errorf("service: could not record position: %w", err)
	}
	s.notify(ctx, log, webhook.EventUnitPosition, "unit:"+position.UnitID.String(), position)
	log.Debug("Position recorded")
	return nil
}

// ListNearby - экипажи в радиусе, по желанию только свободные
func (s *unitService) ListNearby(ctx context.Context, lat, lon, radiusKm float64, onlyAvailable bool) ([]Candidate, error) {
	if radiusKm <= 0 {
		return nil, &ValidationError{Field: "radius_km", Reason: "must be positive"}
	}
	if onlyAvailable {
		return s.geo.NearestAvailable(ctx, lat, lon, radiusKm, UnitPool{})
	}
	return s.geo.UnitsWithin(ctx, lat, lon, radiusKm)
}
