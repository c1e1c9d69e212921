package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// Clock возвращает текущее время; подменяется в тестах
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// IncidentRepository определяет контракт для работы с хранилищем инцидентов.
// Отсутствующие записи возвращаются как models.ErrNotFound.
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) error
	List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	// ApplyTransition атомарно меняет статус from -> to и пишет запись журнала.
	// Если текущий статус уже не from, возвращает models.ErrStatusConflict.
	ApplyTransition(ctx context.Context, id uuid.UUID, from, to models.IncidentStatus, note string, at time.Time) (*models.Incident, error)
	// NextProtocolSequence атомарно увеличивает счетчик протоколов за год
	NextProtocolSequence(ctx context.Context, year int) (int, error)
}

// IncidentCache - необязательный кеш чтения инцидентов
type IncidentCache interface {
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

type TransitionRepository interface {
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.TransitionLogEntry, error)
}

// UnitRepository - реестр экипажей. Create возвращает models.ErrDuplicate
// при повторе номера или позывного.
type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	List(ctx context.Context, filter models.UnitFilter) ([]*models.Unit, error)
	// UpdateStatus - compare-and-swap статуса экипажа
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.UnitStatus) (*models.Unit, error)
}

type PositionRepository interface {
	Append(ctx context.Context, position *models.Position) error
	// Latest возвращает последнюю отметку для каждого экипажа, у которого она есть
	Latest(ctx context.Context, unitIDs []uuid.UUID) (map[uuid.UUID]*models.Position, error)
}

// DispatchRepository хранит выезды. Все переходы статуса условные:
// нарушение ожидаемого состояния дает models.ErrStatusConflict.
type DispatchRepository interface {
	// CreateWithUnitClaim переводит экипаж available -> en_route и создает выезд одной операцией
	CreateWithUnitClaim(ctx context.Context, dispatch *models.Dispatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispatch, error)
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.Dispatch, error)
	ActiveByUnit(ctx context.Context, unitID uuid.UUID) (*models.Dispatch, error)
	Accept(ctx context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error)
	RecordArrival(ctx context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error)
	MarkAttendanceStarted(ctx context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error)
	AppendActions(ctx context.Context, id uuid.UUID, actions []models.ActionEntry) (*models.Dispatch, error)
	// CompleteWithUnitRelease закрывает выезд с действиями и освобождает экипаж
	CompleteWithUnitRelease(ctx context.Context, id uuid.UUID, notes string, at time.Time) (*models.Dispatch, error)
	CancelWithUnitRelease(ctx context.Context, id uuid.UUID, notes string, at time.Time) (*models.Dispatch, error)
}

type ReinforcementRepository interface {
	Create(ctx context.Context, request *models.ReinforcementRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReinforcementRequest, error)
	// List сортирует по срочности по убыванию, затем по времени запроса по убыванию
	List(ctx context.Context, filter models.ReinforcementFilter) ([]*models.ReinforcementRequest, error)
	MarkFulfilled(ctx context.Context, id, unitID, dispatchID uuid.UUID, by string, responseMinutes int, at time.Time) (*models.ReinforcementRequest, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, reason, by string, at time.Time) (*models.ReinforcementRequest, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Department, error)
	GetByCode(ctx context.Context, code string) (*models.Department, error)
}

type HomicideRepository interface {
	AddChecklist(ctx context.Context, items []*models.ChecklistItem) error
	ListChecklist(ctx context.Context, incidentID uuid.UUID) ([]*models.ChecklistItem, error)
	AddTeamRequests(ctx context.Context, requests []*models.TeamRequest) error
	ListTeamRequests(ctx context.Context, incidentID uuid.UUID) ([]*models.TeamRequest, error)
	SavePerimeter(ctx context.Context, perimeter *models.ScenePerimeter) error
}

type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.AuditEntry, error)
}

// CallRepository - обращения центра приема вызовов. Create возвращает models.ErrDuplicate
// при повторе внешнего протокола той же системы-источника.
type CallRepository interface {
	Create(ctx context.Context, call *models.Call) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Call, error)
	// List сортирует по времени приема по убыванию
	List(ctx context.Context, filter models.CallFilter) ([]*models.Call, error)
}

// Repositories - набор хранилищ, которыми пользуются сервисы ядра
type Repositories struct {
	Incidents      IncidentRepository
	Transitions    TransitionRepository
	Units          UnitRepository
	Positions      PositionRepository
	Dispatches     DispatchRepository
	Reinforcements ReinforcementRepository
	Departments    DepartmentRepository
	Homicide       HomicideRepository
	Audit          AuditRepository
	Calls          CallRepository
}
