package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/sirupsen/logrus"
)

const earthRadiusKm = 6371.0

// HaversineKm - расстояние по большому кругу в километрах, координаты в градусах
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// RoundKm округляет до двух знаков для отображения
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// UnitPool ограничивает выборку экипажей по подразделению; нулевые значения не ограничивают
type UnitPool struct {
	DepartmentID        uuid.UUID
	ExcludeDepartmentID uuid.UUID
}

// Candidate - экипаж с последней позицией и расстоянием до точки
type Candidate struct {
	Unit       *models.Unit
	Position   *models.Position
	DistanceKm float64
}

// RankCandidates отбрасывает экипажи без позиции и дальше радиуса (radiusKm <= 0 - без ограничения)
// и сортирует по расстоянию, при равенстве по ID экипажа
func RankCandidates(lat, lon, radiusKm float64, units []*models.Unit, positions map[uuid.UUID]*models.Position) []Candidate {
	candidates := make([]Candidate, 0, len(units))
	for _, unit := range units {
		position, ok := positions[unit.ID]
		if !ok || position == nil {
			continue
		}
		distance := HaversineKm(lat, lon, position.Latitude, position.Longitude)
		if radiusKm > 0 && distance > radiusKm {
			continue
		}
		candidates = append(candidates, Candidate{Unit: unit, Position: position, DistanceKm: distance})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].Unit.ID.String() < candidates[j].Unit.ID.String()
	})
	return candidates
}

// GeoService ищет ближайшие экипажи по последним отметкам GPS
type GeoService struct {
	units     UnitRepository
	positions PositionRepository
	logger    *logrus.Logger
}

func NewGeoService(units UnitRepository, positions PositionRepository, logger *logrus.Logger) *GeoService {
	return &GeoService{units: units, positions: positions, logger: logger}
}

// NearestAvailable возвращает свободные экипажи пула в радиусе, ближайшие первыми
func (g *GeoService) NearestAvailable(ctx context.Context, lat, lon, radiusKm float64, pool UnitPool) ([]Candidate, error) {
	return g.search(ctx, lat, lon, radiusKm, models.UnitFilter{
		Status:              models.UnitAvailable,
		DepartmentID:        pool.DepartmentID,
		ExcludeDepartmentID: pool.ExcludeDepartmentID,
	})
}

// UnitsWithin возвращает экипажи любого статуса в радиусе
func (g *GeoService) UnitsWithin(ctx context.Context, lat, lon, radiusKm float64) ([]Candidate, error) {
	return g.search(ctx, lat, lon, radiusKm, models.UnitFilter{})
}

func (g *GeoService) search(ctx context.Context, lat, lon, radiusKm float64, filter models.UnitFilter) ([]Candidate, error) {
	log := g.logger.WithFields(logrus.Fields{
		"service":   "geo",
		"method":    "search",
		"radius_km": radiusKm,
		"status":    filter.Status,
	})

	units, err := g.units.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list units")
		return nil, fmt.Errorf("service: could not list units: %w", err)
	}
	if len(units) == 0 {
		return []Candidate{}, nil
	}

	ids := make([]uuid.UUID, 0, len(units))
	for _, unit := range units {
		ids = append(ids, unit.ID)
	}
	positions, err := g.positions.Latest(ctx, ids)
	if err != nil {
		log.WithError(err).Error("Failed to load latest positions")
		return nil, fmt.Errorf("service: could not load unit positions: %w", err)
	}

	candidates := RankCandidates(lat, lon, radiusKm, units, positions)
	log.WithField("count", len(candidates)).Debug("Unit search completed")
	return candidates, nil
}
