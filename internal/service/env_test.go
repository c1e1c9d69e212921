package service

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/config"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/repository/memory"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	webhook_mocks "github.com/shenikar/dispatch_orchestrator/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// Центр Белу-Оризонти; 1 градус широты = 111.195 км по формуле гаверсинуса
const (
	baseLat  = -19.9167
	baseLon  = -43.9345
	kmPerDeg = earthRadiusKm * math.Pi / 180
)

// testEnv - ядро над хранилищем в памяти с фиксированными часами
type testEnv struct {
	store     *memory.Store
	core      *Core
	cfg       *config.Config
	publisher *webhook_mocks.MockWebhookPublisher
	standard  *models.Department
	homicide  *models.Department

	mu     sync.Mutex
	now    time.Time
	events []webhook.WebhookEvent
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	env := &testEnv{
		store:     memory.New(),
		cfg:       config.Default(),
		publisher: webhook_mocks.NewMockWebhookPublisher(ctrl),
		now:       time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	env.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.WebhookEvent) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.events = append(env.events, event)
			return nil
		}).AnyTimes()

	ctx := context.Background()
	env.standard = &models.Department{Code: "PMMG", Name: "Polícia Militar", Kind: models.DepartmentStandard}
	env.homicide = &models.Department{Code: "DHPP", Name: "Homicídios", Kind: models.DepartmentHomicide}
	require.NoError(t, env.store.Departments().Create(ctx, env.standard))
	require.NoError(t, env.store.Departments().Create(ctx, env.homicide))

	env.core = NewCore(env.repos(), env.publisher, env.cfg, logger, CoreOptions{Clock: env.clock})
	return env
}

func (e *testEnv) repos() Repositories {
	return Repositories{
		Incidents:      e.store.Incidents(),
		Transitions:    e.store.Transitions(),
		Units:          e.store.Units(),
		Positions:      e.store.Positions(),
		Dispatches:     e.store.Dispatches(),
		Reinforcements: e.store.Reinforcements(),
		Departments:    e.store.Departments(),
		Homicide:       e.store.Homicide(),
		Audit:          e.store.Audit(),
		Calls:          e.store.Calls(),
	}
}

func (e *testEnv) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
}

func (e *testEnv) eventTypes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]string, 0, len(e.events))
	for _, event := range e.events {
		types = append(types, event.Type)
	}
	return types
}

// addUnit регистрирует экипаж в distanceKm к северу от базовой точки
func (e *testEnv) addUnit(t *testing.T, department *models.Department, distanceKm float64, status models.UnitStatus) *models.Unit {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	unit := &models.Unit{
		ID:           id,
		Plate:        "P-" + id.String()[:8],
		CallSign:     "VTR-" + id.String()[:8],
		Type:         "patrol",
		Status:       status,
		DepartmentID: department.ID,
	}
	require.NoError(t, e.store.Units().Create(ctx, unit))
	require.NoError(t, e.store.Positions().Append(ctx, &models.Position{
		UnitID:     unit.ID,
		Latitude:   baseLat + distanceKm/kmPerDeg,
		Longitude:  baseLon,
		RecordedAt: e.clock(),
	}))
	return unit
}

func (e *testEnv) unitStatus(t *testing.T, id uuid.UUID) models.UnitStatus {
	t.Helper()
	unit, err := e.store.Units().GetByID(context.Background(), id)
	require.NoError(t, err)
	return unit.Status
}

// openIncident регистрирует инцидент в базовой точке через полный цикл приема
func (e *testEnv) openIncident(t *testing.T, incidentType string) *IntakeResult {
	t.Helper()
	result, err := e.core.Flow.ProcessNewIncident(context.Background(), NewIncident{
		Type:        incidentType,
		Description: "Ocorrência de teste",
		Location:    "Praça Sete",
		Latitude:    baseLat,
		Longitude:   baseLon,
	})
	require.NoError(t, err)
	return result
}

// seedIncident создает инцидент напрямую в нужном статусе, минуя прием
func (e *testEnv) seedIncident(t *testing.T, status models.IncidentStatus) *models.Incident {
	t.Helper()
	ctx := context.Background()
	incident := &models.Incident{
		Protocol:     "SEED-" + uuid.NewString(),
		Type:         "Furto",
		Latitude:     baseLat,
		Longitude:    baseLon,
		Status:       models.IncidentInitial,
		Priority:     models.PriorityMedium,
		RegisteredAt: e.clock(),
		DepartmentID: e.standard.ID,
	}
	require.NoError(t, e.store.Incidents().Create(ctx, incident))
	for stage(incident.Status) < stage(status) {
		next := lifecycle[stage(incident.Status)+1]
		updated, err := e.store.Incidents().ApplyTransition(ctx, incident.ID, incident.Status, next, "seed", e.clock())
		require.NoError(t, err)
		incident = updated
	}
	return incident
}
