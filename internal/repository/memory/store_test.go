package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnit(t *testing.T, st *Store, plate string) *models.Unit {
	t.Helper()
	unit := &models.Unit{Plate: plate, CallSign: "CS-" + plate, Status: models.UnitAvailable}
	require.NoError(t, st.Units().Create(context.Background(), unit))
	return unit
}

func TestCreateWithUnitClaim_ConcurrentClaimsSingleWinner(t *testing.T) {
	st := New()
	ctx := context.Background()
	unit := newUnit(t, st, "ABC1234")

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Dispatches().CreateWithUnitClaim(ctx, &models.Dispatch{IncidentID: uuid.New(), UnitID: unit.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, models.ErrStatusConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, conflicts)

	stored, err := st.Units().GetByID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitEnRoute, stored.Status)
}

func TestCompleteWithUnitRelease_RequiresActions(t *testing.T) {
	st := New()
	ctx := context.Background()
	unit := newUnit(t, st, "XYZ9876")
	dispatch := &models.Dispatch{IncidentID: uuid.New(), UnitID: unit.ID}
	require.NoError(t, st.Dispatches().CreateWithUnitClaim(ctx, dispatch))

	_, err := st.Dispatches().CompleteWithUnitRelease(ctx, dispatch.ID, "", time.Now())
	assert.ErrorIs(t, err, models.ErrStatusConflict)

	_, err = st.Dispatches().AppendActions(ctx, dispatch.ID, []models.ActionEntry{{Text: "vítima socorrida", RecordedAt: time.Now()}})
	require.NoError(t, err)

	completed, err := st.Dispatches().CompleteWithUnitRelease(ctx, dispatch.ID, "ok", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.DispatchCompleted, completed.Status)

	released, err := st.Units().GetByID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, released.Status)

	_, err = st.Dispatches().AppendActions(ctx, dispatch.ID, []models.ActionEntry{{Text: "late"}})
	assert.ErrorIs(t, err, models.ErrStatusConflict)
}

func TestApplyTransition_StaleFromStatusConflicts(t *testing.T) {
	st := New()
	ctx := context.Background()
	incident := &models.Incident{Protocol: "OC-2025-00001", Status: models.IncidentInitial}
	require.NoError(t, st.Incidents().Create(ctx, incident))

	_, err := st.Incidents().ApplyTransition(ctx, incident.ID, models.IncidentInitial, models.IncidentOpened, "", time.Now())
	require.NoError(t, err)

	_, err = st.Incidents().ApplyTransition(ctx, incident.ID, models.IncidentInitial, models.IncidentOpened, "", time.Now())
	assert.ErrorIs(t, err, models.ErrStatusConflict)

	history, err := st.Transitions().ListByIncident(ctx, incident.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestNextProtocolSequence_YearScoped(t *testing.T) {
	st := New()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		seq, err := st.Incidents().NextProtocolSequence(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, i, seq)
	}
	seq, err := st.Incidents().NextProtocolSequence(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestReinforcementList_SortedByUrgencyThenRecency(t *testing.T) {
	st := New()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	low := &models.ReinforcementRequest{Urgency: 2, Status: models.ReinforcementPending, RequestedAt: base.Add(time.Hour)}
	highOld := &models.ReinforcementRequest{Urgency: 5, Status: models.ReinforcementPending, RequestedAt: base}
	highNew := &models.ReinforcementRequest{Urgency: 5, Status: models.ReinforcementPending, RequestedAt: base.Add(time.Minute)}
	for _, r := range []*models.ReinforcementRequest{low, highOld, highNew} {
		require.NoError(t, st.Reinforcements().Create(ctx, r))
	}

	list, err := st.Reinforcements().List(ctx, models.ReinforcementFilter{Status: models.ReinforcementPending})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, highNew.ID, list[0].ID)
	assert.Equal(t, highOld.ID, list[1].ID)
	assert.Equal(t, low.ID, list[2].ID)
}

func TestUnitCreate_DuplicatePlate(t *testing.T) {
	st := New()
	newUnit(t, st, "DUP0001")

	err := st.Units().Create(context.Background(), &models.Unit{Plate: "DUP0001", CallSign: "OTHER"})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestTransitionList_SameTimestampKeepsInsertionOrder(t *testing.T) {
	st := New()
	ctx := context.Background()
	incident := &models.Incident{Protocol: "OC-2025-00001", Status: models.IncidentInitial}
	require.NoError(t, st.Incidents().Create(ctx, incident))

	at := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	path := []models.IncidentStatus{models.IncidentOpened, models.IncidentUnitRequested, models.IncidentDispatched}
	from := models.IncidentInitial
	for _, to := range path {
		_, err := st.Incidents().ApplyTransition(ctx, incident.ID, from, to, "", at)
		require.NoError(t, err)
		from = to
	}

	entries, err := st.Transitions().ListByIncident(ctx, incident.ID)

	require.NoError(t, err)
	require.Len(t, entries, len(path))
	for i, entry := range entries {
		assert.Equal(t, path[i], entry.To)
	}
}

func TestCallCreate_DuplicateExternalProtocol(t *testing.T) {
	st := New()
	ctx := context.Background()

	require.NoError(t, st.Calls().Create(ctx, &models.Call{SourceSystem: "SIAD", ExternalProtocol: "EXT-1"}))

	err := st.Calls().Create(ctx, &models.Call{SourceSystem: "SIAD", ExternalProtocol: "EXT-1"})
	assert.True(t, errors.Is(err, models.ErrDuplicate))

	// другой источник и обращения без протокола не конфликтуют
	require.NoError(t, st.Calls().Create(ctx, &models.Call{SourceSystem: "CAD-2", ExternalProtocol: "EXT-1"}))
	require.NoError(t, st.Calls().Create(ctx, &models.Call{CallerPhone: "190"}))
	require.NoError(t, st.Calls().Create(ctx, &models.Call{CallerPhone: "190"}))

	calls, err := st.Calls().List(ctx, models.CallFilter{})
	require.NoError(t, err)
	assert.Len(t, calls, 4)

	_, err = st.Calls().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIncidentList_FilterByCall(t *testing.T) {
	st := New()
	ctx := context.Background()

	call := &models.Call{CallerPhone: "190"}
	require.NoError(t, st.Calls().Create(ctx, call))
	callID := call.ID
	linked := &models.Incident{Protocol: "OC-2025-00001", Type: "Furto", Status: models.IncidentInitial, RegisteredAt: time.Now(), CallID: &callID}
	require.NoError(t, st.Incidents().Create(ctx, linked))
	require.NoError(t, st.Incidents().Create(ctx, &models.Incident{Protocol: "OC-2025-00002", Type: "Furto", Status: models.IncidentInitial, RegisteredAt: time.Now()}))

	incidents, err := st.Incidents().List(ctx, models.IncidentFilter{CallID: &callID})
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, linked.ID, incidents[0].ID)
}
