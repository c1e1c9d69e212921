// Package memory - хранилище в памяти процесса с теми же гарантиями атомарности,
// что и PostgreSQL-реализация. Используется в тестах и в режиме STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// Store держит все коллекции под одним мьютексом: каждая операция - одна критическая секция
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	incidents      map[uuid.UUID]*models.Incident
	transitions    []*models.TransitionLogEntry
	sequences      map[int]int
	units          map[uuid.UUID]*models.Unit
	positions      map[uuid.UUID][]*models.Position
	dispatches     map[uuid.UUID]*models.Dispatch
	reinforcements map[uuid.UUID]*models.ReinforcementRequest
	departments    map[uuid.UUID]*models.Department
	checklist      []*models.ChecklistItem
	team           []*models.TeamRequest
	perimeters     []*models.ScenePerimeter
	audit          []*models.AuditEntry
	calls          map[uuid.UUID]*models.Call
}

func New() *Store {
	return &Store{
		now:            func() time.Time { return time.Now().UTC() },
		incidents:      make(map[uuid.UUID]*models.Incident),
		sequences:      make(map[int]int),
		units:          make(map[uuid.UUID]*models.Unit),
		positions:      make(map[uuid.UUID][]*models.Position),
		dispatches:     make(map[uuid.UUID]*models.Dispatch),
		reinforcements: make(map[uuid.UUID]*models.ReinforcementRequest),
		departments:    make(map[uuid.UUID]*models.Department),
		calls:          make(map[uuid.UUID]*models.Call),
	}
}

func (s *Store) Incidents() *IncidentStore           { return &IncidentStore{s} }
func (s *Store) Transitions() *TransitionStore       { return &TransitionStore{s} }
func (s *Store) Units() *UnitStore                   { return &UnitStore{s} }
func (s *Store) Positions() *PositionStore           { return &PositionStore{s} }
func (s *Store) Dispatches() *DispatchStore          { return &DispatchStore{s} }
func (s *Store) Reinforcements() *ReinforcementStore { return &ReinforcementStore{s} }
func (s *Store) Departments() *DepartmentStore       { return &DepartmentStore{s} }
func (s *Store) Homicide() *HomicideStore            { return &HomicideStore{s} }
func (s *Store) Audit() *AuditStore                  { return &AuditStore{s} }
func (s *Store) Calls() *CallStore                   { return &CallStore{s} }

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// Incidents

type IncidentStore struct{ s *Store }

func (r *IncidentStore) Create(_ context.Context, incident *models.Incident) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.incidents {
		if incident.Protocol != "" && existing.Protocol == incident.Protocol {
			return models.ErrDuplicate
		}
	}
	now := r.s.now()
	incident.ID = newID(incident.ID)
	incident.CreatedAt = now
	incident.UpdatedAt = now
	r.s.incidents[incident.ID] = cloneIncident(incident)
	return nil
}

func (r *IncidentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	incident, ok := r.s.incidents[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneIncident(incident), nil
}

// Update меняет описательные поля; статус и закрытие меняются только через ApplyTransition
func (r *IncidentStore) Update(_ context.Context, incident *models.Incident) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.incidents[incident.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Type = incident.Type
	stored.Description = incident.Description
	stored.Location = incident.Location
	stored.Latitude = incident.Latitude
	stored.Longitude = incident.Longitude
	stored.Priority = incident.Priority
	stored.DepartmentID = incident.DepartmentID
	stored.Notes = incident.Notes
	stored.UpdatedAt = r.s.now()
	incident.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *IncidentStore) List(_ context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.Incident, 0, len(r.s.incidents))
	for _, incident := range r.s.incidents {
		if filter.Status != "" && incident.Status != filter.Status {
			continue
		}
		if filter.CallID != nil && (incident.CallID == nil || *incident.CallID != *filter.CallID) {
			continue
		}
		result = append(result, cloneIncident(incident))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RegisteredAt.Equal(result[j].RegisteredAt) {
			return result[i].RegisteredAt.After(result[j].RegisteredAt)
		}
		return result[i].Protocol > result[j].Protocol
	})
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(result) {
			return []*models.Incident{}, nil
		}
		end := start + filter.PageSize
		if end > len(result) {
			end = len(result)
		}
		result = result[start:end]
	}
	return result, nil
}

func (r *IncidentStore) ApplyTransition(_ context.Context, id uuid.UUID, from, to models.IncidentStatus, note string, at time.Time) (*models.Incident, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	incident, ok := r.s.incidents[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if incident.Status != from {
		return nil, models.ErrStatusConflict
	}
	incident.Status = to
	incident.LastTransitionAt = at
	incident.UpdatedAt = at
	if to == models.IncidentFinalized {
		closedAt := at
		incident.ClosedAt = &closedAt
	}
	r.s.transitions = append(r.s.transitions, &models.TransitionLogEntry{
		ID:         uuid.New(),
		IncidentID: id,
		From:       from,
		To:         to,
		Note:       note,
		At:         at,
	})
	return cloneIncident(incident), nil
}

func (r *IncidentStore) NextProtocolSequence(_ context.Context, year int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sequences[year]++
	return r.s.sequences[year], nil
}

type TransitionStore struct{ s *Store }

func (r *TransitionStore) ListByIncident(_ context.Context, incidentID uuid.UUID) ([]*models.TransitionLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.TransitionLogEntry, 0)
	for _, entry := range r.s.transitions {
		if entry.IncidentID == incidentID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	// порядок вставки сохраняется для равных отметок времени
	sort.SliceStable(result, func(i, j int) bool { return result[i].At.Before(result[j].At) })
	return result, nil
}

// Units

type UnitStore struct{ s *Store }

func (r *UnitStore) Create(_ context.Context, unit *models.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.units {
		if existing.Plate == unit.Plate || existing.CallSign == unit.CallSign {
			return models.ErrDuplicate
		}
	}
	now := r.s.now()
	unit.ID = newID(unit.ID)
	unit.CreatedAt = now
	unit.UpdatedAt = now
	copied := *unit
	r.s.units[unit.ID] = &copied
	return nil
}

func (r *UnitStore) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	unit, ok := r.s.units[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *unit
	return &copied, nil
}

func (r *UnitStore) List(_ context.Context, filter models.UnitFilter) ([]*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.Unit, 0, len(r.s.units))
	for _, unit := range r.s.units {
		if filter.Status != "" && unit.Status != filter.Status {
			continue
		}
		if filter.DepartmentID != uuid.Nil && unit.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.ExcludeDepartmentID != uuid.Nil && unit.DepartmentID == filter.ExcludeDepartmentID {
			continue
		}
		copied := *unit
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.String() < result[j].ID.String() })
	return result, nil
}

func (r *UnitStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.UnitStatus) (*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	unit, ok := r.s.units[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if unit.Status != from {
		return nil, models.ErrStatusConflict
	}
	unit.Status = to
	unit.UpdatedAt = r.s.now()
	copied := *unit
	return &copied, nil
}

type PositionStore struct{ s *Store }

func (r *PositionStore) Append(_ context.Context, position *models.Position) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.units[position.UnitID]; !ok {
		return models.ErrNotFound
	}
	position.ID = newID(position.ID)
	if position.RecordedAt.IsZero() {
		position.RecordedAt = r.s.now()
	}
	copied := *position
	r.s.positions[position.UnitID] = append(r.s.positions[position.UnitID], &copied)
	return nil
}

func (r *PositionStore) Latest(_ context.Context, unitIDs []uuid.UUID) (map[uuid.UUID]*models.Position, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make(map[uuid.UUID]*models.Position, len(unitIDs))
	for _, unitID := range unitIDs {
		var latest *models.Position
		for _, position := range r.s.positions[unitID] {
			if latest == nil || !position.RecordedAt.Before(latest.RecordedAt) {
				latest = position
			}
		}
		if latest != nil {
			copied := *latest
			result[unitID] = &copied
		}
	}
	return result, nil
}

// Dispatches

type DispatchStore struct{ s *Store }

func (r *DispatchStore) CreateWithUnitClaim(_ context.Context, dispatch *models.Dispatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	unit, ok := r.s.units[dispatch.UnitID]
	if !ok {
		return models.ErrNotFound
	}
	if unit.Status != models.UnitAvailable || r.s.activeDispatchLocked(unit.ID) != nil {
		return models.ErrStatusConflict
	}

	now := r.s.now()
	unit.Status = models.UnitEnRoute
	unit.UpdatedAt = now

	dispatch.ID = newID(dispatch.ID)
	if dispatch.Status == "" {
		dispatch.Status = models.DispatchSent
	}
	if dispatch.DispatchedAt.IsZero() {
		dispatch.DispatchedAt = now
	}
	if dispatch.Actions == nil {
		dispatch.Actions = []models.ActionEntry{}
	}
	dispatch.UpdatedAt = now
	r.s.dispatches[dispatch.ID] = cloneDispatch(dispatch)
	return nil
}

func (s *Store) activeDispatchLocked(unitID uuid.UUID) *models.Dispatch {
	for _, dispatch := range s.dispatches {
		if dispatch.UnitID == unitID && !dispatch.Status.Terminal() {
			return dispatch
		}
	}
	return nil
}

func (r *DispatchStore) GetByID(_ context.Context, id uuid.UUID) (*models.Dispatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	dispatch, ok := r.s.dispatches[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneDispatch(dispatch), nil
}

func (r *DispatchStore) ListByIncident(_ context.Context, incidentID uuid.UUID) ([]*models.Dispatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.Dispatch, 0)
	for _, dispatch := range r.s.dispatches {
		if dispatch.IncidentID == incidentID {
			result = append(result, cloneDispatch(dispatch))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DispatchedAt.Equal(result[j].DispatchedAt) {
			return result[i].DispatchedAt.Before(result[j].DispatchedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (r *DispatchStore) ActiveByUnit(_ context.Context, unitID uuid.UUID) (*models.Dispatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	dispatch := r.s.activeDispatchLocked(unitID)
	if dispatch == nil {
		return nil, models.ErrNotFound
	}
	return cloneDispatch(dispatch), nil
}

// mutate применяет fn к выезду под блокировкой; fn возвращает false, если состояние не подходит
func (r *DispatchStore) mutate(id uuid.UUID, fn func(d *models.Dispatch, unit *models.Unit) bool) (*models.Dispatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	dispatch, ok := r.s.dispatches[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !fn(dispatch, r.s.units[dispatch.UnitID]) {
		return nil, models.ErrStatusConflict
	}
	dispatch.UpdatedAt = r.s.now()
	return cloneDispatch(dispatch), nil
}

func (r *DispatchStore) Accept(_ context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error) {
	return r.mutate(id, func(d *models.Dispatch, _ *models.Unit) bool {
		if d.Status != models.DispatchSent {
			return false
		}
		d.Status = models.DispatchInField
		d.AcceptedAt = &at
		return true
	})
}

func (r *DispatchStore) RecordArrival(_ context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error) {
	return r.mutate(id, func(d *models.Dispatch, unit *models.Unit) bool {
		if d.Status != models.DispatchSent && d.Status != models.DispatchInField {
			return false
		}
		d.Status = models.DispatchOnScene
		d.ArrivedAt = &at
		if unit != nil {
			unit.Status = models.UnitOnScene
			unit.UpdatedAt = at
		}
		return true
	})
}

func (r *DispatchStore) MarkAttendanceStarted(_ context.Context, id uuid.UUID, at time.Time) (*models.Dispatch, error) {
	return r.mutate(id, func(d *models.Dispatch, _ *models.Unit) bool {
		if d.Status.Terminal() {
			return false
		}
		if d.AttendanceStartedAt == nil {
			d.AttendanceStartedAt = &at
		}
		return true
	})
}

func (r *DispatchStore) AppendActions(_ context.Context, id uuid.UUID, actions []models.ActionEntry) (*models.Dispatch, error) {
	return r.mutate(id, func(d *models.Dispatch, _ *models.Unit) bool {
		if d.Status.Terminal() {
			return false
		}
		d.Actions = append(d.Actions, actions...)
		return true
	})
}

func (r *DispatchStore) CompleteWithUnitRelease(_ context.Context, id uuid.UUID, notes string, at time.Time) (*models.Dispatch, error) {
	return r.mutate(id, func(d *models.Dispatch, unit *models.Unit) bool {
		if d.Status.Terminal() || len(d.Actions) == 0 {
			return false
		}
		d.Status = models.DispatchCompleted
		d.CompletedAt = &at
		if notes != "" {
			d.Notes = notes
		}
		releaseUnit(unit, at)
		return true
	})
}

func (r *DispatchStore) CancelWithUnitRelease(_ context.Context, id uuid.UUID, notes string, at time.Time) (*models.Dispatch, error) {
	return r.mutate(id, func(d *models.Dispatch, unit *models.Unit) bool {
		if d.Status.Terminal() {
			return false
		}
		d.Status = models.DispatchCancelled
		d.CompletedAt = &at
		if notes != "" {
			d.Notes = notes
		}
		releaseUnit(unit, at)
		return true
	})
}

func releaseUnit(unit *models.Unit, at time.Time) {
	if unit == nil {
		return
	}
	if unit.Status == models.UnitEnRoute || unit.Status == models.UnitOnScene {
		unit.Status = models.UnitAvailable
		unit.UpdatedAt = at
	}
}

// Reinforcements

type ReinforcementStore struct{ s *Store }

func (r *ReinforcementStore) Create(_ context.Context, request *models.ReinforcementRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request.ID = newID(request.ID)
	if request.RequestedAt.IsZero() {
		request.RequestedAt = r.s.now()
	}
	copied := *request
	r.s.reinforcements[request.ID] = &copied
	return nil
}

func (r *ReinforcementStore) GetByID(_ context.Context, id uuid.UUID) (*models.ReinforcementRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.reinforcements[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *ReinforcementStore) List(_ context.Context, filter models.ReinforcementFilter) ([]*models.ReinforcementRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.ReinforcementRequest, 0)
	for _, request := range r.s.reinforcements {
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		if filter.IncidentID != uuid.Nil && request.IncidentID != filter.IncidentID {
			continue
		}
		if request.Urgency < filter.MinUrgency {
			continue
		}
		copied := *request
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Urgency != result[j].Urgency {
			return result[i].Urgency > result[j].Urgency
		}
		return result[i].RequestedAt.After(result[j].RequestedAt)
	})
	return result, nil
}

func (r *ReinforcementStore) MarkFulfilled(_ context.Context, id, unitID, dispatchID uuid.UUID, by string, responseMinutes int, at time.Time) (*models.ReinforcementRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.reinforcements[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if request.Status != models.ReinforcementPending {
		return nil, models.ErrStatusConflict
	}
	request.Status = models.ReinforcementFulfilled
	request.FulfilledAt = &at
	request.AssignedUnitID = &unitID
	request.DispatchID = &dispatchID
	request.FulfilledBy = by
	request.ResponseMinutes = &responseMinutes
	copied := *request
	return &copied, nil
}

func (r *ReinforcementStore) MarkCancelled(_ context.Context, id uuid.UUID, reason, by string, at time.Time) (*models.ReinforcementRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	request, ok := r.s.reinforcements[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if request.Status != models.ReinforcementPending {
		return nil, models.ErrStatusConflict
	}
	request.Status = models.ReinforcementCancelled
	request.CancelledAt = &at
	request.CancelReason = reason
	request.CancelledBy = by
	copied := *request
	return &copied, nil
}

// Departments

type DepartmentStore struct{ s *Store }

func (r *DepartmentStore) Create(_ context.Context, department *models.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.departments {
		if existing.Code == department.Code {
			return models.ErrDuplicate
		}
	}
	department.ID = newID(department.ID)
	copied := *department
	r.s.departments[department.ID] = &copied
	return nil
}

func (r *DepartmentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	department, ok := r.s.departments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *department
	return &copied, nil
}

func (r *DepartmentStore) GetByCode(_ context.Context, code string) (*models.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, department := range r.s.departments {
		if department.Code == code {
			copied := *department
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

// Homicide protocol records

type HomicideStore struct{ s *Store }

func (r *HomicideStore) AddChecklist(_ context.Context, items []*models.ChecklistItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for _, item := range items {
		item.ID = newID(item.ID)
		item.CreatedAt = now
		copied := *item
		r.s.checklist = append(r.s.checklist, &copied)
	}
	return nil
}

func (r *HomicideStore) ListChecklist(_ context.Context, incidentID uuid.UUID) ([]*models.ChecklistItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.ChecklistItem, 0)
	for _, item := range r.s.checklist {
		if item.IncidentID == incidentID {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *HomicideStore) AddTeamRequests(_ context.Context, requests []*models.TeamRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for _, request := range requests {
		request.ID = newID(request.ID)
		request.CreatedAt = now
		copied := *request
		r.s.team = append(r.s.team, &copied)
	}
	return nil
}

func (r *HomicideStore) ListTeamRequests(_ context.Context, incidentID uuid.UUID) ([]*models.TeamRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.TeamRequest, 0)
	for _, request := range r.s.team {
		if request.IncidentID == incidentID {
			copied := *request
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *HomicideStore) SavePerimeter(_ context.Context, perimeter *models.ScenePerimeter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	perimeter.ID = newID(perimeter.ID)
	perimeter.CreatedAt = r.s.now()
	copied := *perimeter
	r.s.perimeters = append(r.s.perimeters, &copied)
	return nil
}

// Perimeters возвращает сохраненные периметры инцидента
func (r *HomicideStore) Perimeters(incidentID uuid.UUID) []*models.ScenePerimeter {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.ScenePerimeter, 0)
	for _, perimeter := range r.s.perimeters {
		if perimeter.IncidentID == incidentID {
			copied := *perimeter
			result = append(result, &copied)
		}
	}
	return result
}

// Audit

type AuditStore struct{ s *Store }

func (r *AuditStore) Append(_ context.Context, entry *models.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = newID(entry.ID)
	if entry.At.IsZero() {
		entry.At = r.s.now()
	}
	copied := *entry
	r.s.audit = append(r.s.audit, &copied)
	return nil
}

func (r *AuditStore) ListByIncident(_ context.Context, incidentID uuid.UUID) ([]*models.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.AuditEntry, 0)
	for _, entry := range r.s.audit {
		if entry.IncidentID != nil && *entry.IncidentID == incidentID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Entries возвращает записи аудита заданного вида, включая не привязанные к инциденту
func (r *AuditStore) Entries(kind string) []*models.AuditEntry {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.AuditEntry, 0)
	for _, entry := range r.s.audit {
		if entry.Kind == kind {
			copied := *entry
			result = append(result, &copied)
		}
	}
	return result
}

// Calls

type CallStore struct{ s *Store }

// Create отклоняет повтор внешнего протокола той же системы-источника
func (r *CallStore) Create(_ context.Context, call *models.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if call.ExternalProtocol != "" {
		for _, existing := range r.s.calls {
			if existing.SourceSystem == call.SourceSystem && existing.ExternalProtocol == call.ExternalProtocol {
				return models.ErrDuplicate
			}
		}
	}
	call.ID = newID(call.ID)
	call.CreatedAt = r.s.now()
	if call.ReceivedAt.IsZero() {
		call.ReceivedAt = call.CreatedAt
	}
	copied := *call
	r.s.calls[call.ID] = &copied
	return nil
}

func (r *CallStore) GetByID(_ context.Context, id uuid.UUID) (*models.Call, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	call, ok := r.s.calls[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *call
	return &copied, nil
}

// List - новые первыми
func (r *CallStore) List(_ context.Context, filter models.CallFilter) ([]*models.Call, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*models.Call, 0, len(r.s.calls))
	for _, call := range r.s.calls {
		if filter.From != nil && call.ReceivedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && call.ReceivedAt.After(*filter.To) {
			continue
		}
		copied := *call
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ReceivedAt.Equal(result[j].ReceivedAt) {
			return result[i].ReceivedAt.After(result[j].ReceivedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func cloneIncident(incident *models.Incident) *models.Incident {
	copied := *incident
	if incident.ClosedAt != nil {
		closedAt := *incident.ClosedAt
		copied.ClosedAt = &closedAt
	}
	return &copied
}

func cloneDispatch(dispatch *models.Dispatch) *models.Dispatch {
	copied := *dispatch
	copied.Actions = append([]models.ActionEntry(nil), dispatch.Actions...)
	if copied.Actions == nil {
		copied.Actions = []models.ActionEntry{}
	}
	return &copied
}
