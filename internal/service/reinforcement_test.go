package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dispatchedIncident - инцидент с первым выездом; primary уже занят
func dispatchedIncident(t *testing.T, env *testEnv) (*models.Incident, *models.Unit) {
	t.Helper()
	primary := env.addUnit(t, env.standard, 1, models.UnitAvailable)
	result := env.openIncident(t, "Roubo")
	require.NotNil(t, result.Dispatch)
	require.Equal(t, primary.ID, result.Dispatch.UnitID)
	return result.Incident, primary
}

func TestRequestReinforcement_LowUrgencyNeverAutoFulfills(t *testing.T) {
	for urgency := 1; urgency <= 3; urgency++ {
		env := newTestEnv(t)
		incident, _ := dispatchedIncident(t, env)
		backup := env.addUnit(t, env.standard, 2, models.UnitAvailable)

		request, err := env.core.Reinforcements.RequestReinforcement(context.Background(), ReinforcementInput{
			IncidentID:  incident.ID,
			RequesterID: "officer-1",
			Urgency:     urgency,
		})

		require.NoError(t, err)
		assert.Equal(t, models.ReinforcementPending, request.Status, "urgency %d", urgency)
		assert.Nil(t, request.AssignedUnitID)
		assert.Equal(t, models.UnitAvailable, env.unitStatus(t, backup.ID))
	}
}

func TestRequestReinforcement_HighUrgencyAutoFulfills(t *testing.T) {
	for _, urgency := range []int{4, 5} {
		env := newTestEnv(t)
		ctx := context.Background()
		incident, _ := dispatchedIncident(t, env)
		backup := env.addUnit(t, env.standard, 2, models.UnitAvailable)

		request, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{
			IncidentID:  incident.ID,
			RequesterID: "officer-1",
			Urgency:     urgency,
		})

		require.NoError(t, err)
		assert.Equal(t, models.ReinforcementFulfilled, request.Status)
		assert.Equal(t, SystemActor, request.FulfilledBy)
		require.NotNil(t, request.AssignedUnitID)
		assert.Equal(t, backup.ID, *request.AssignedUnitID)
		assert.Equal(t, models.UnitEnRoute, env.unitStatus(t, backup.ID))

		require.NotNil(t, request.DispatchID)
		dispatch, err := env.core.Dispatch.GetDispatch(ctx, *request.DispatchID)
		require.NoError(t, err)
		assert.Equal(t, models.DispatchKindReinforcement, dispatch.Kind)
		require.NotNil(t, dispatch.ReinforcementID)
		assert.Equal(t, request.ID, *dispatch.ReinforcementID)
	}
}

func TestRequestReinforcement_HighUrgencyWithoutUnitStaysPending(t *testing.T) {
	env := newTestEnv(t)
	incident, _ := dispatchedIncident(t, env)

	request, err := env.core.Reinforcements.RequestReinforcement(context.Background(), ReinforcementInput{
		IncidentID:  incident.ID,
		RequesterID: "officer-1",
		Urgency:     5,
	})

	require.NoError(t, err)
	assert.Equal(t, models.ReinforcementPending, request.Status)
}

func TestRequestReinforcement_HighUrgencyCrossesDepartments(t *testing.T) {
	env := newTestEnv(t)
	incident, _ := dispatchedIncident(t, env)
	homicideUnit := env.addUnit(t, env.homicide, 3, models.UnitAvailable)

	request, err := env.core.Reinforcements.RequestReinforcement(context.Background(), ReinforcementInput{
		IncidentID:  incident.ID,
		RequesterID: "officer-1",
		Urgency:     4,
	})

	require.NoError(t, err)
	require.Equal(t, models.ReinforcementFulfilled, request.Status)
	assert.Equal(t, homicideUnit.ID, *request.AssignedUnitID)
}

func TestRequestReinforcement_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incident, _ := dispatchedIncident(t, env)
	var validation *ValidationError
	var notFound *NotFoundError

	_, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, RequesterID: "x", Urgency: 0})
	assert.ErrorAs(t, err, &validation)
	_, err = env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, RequesterID: "x", Urgency: 6})
	assert.ErrorAs(t, err, &validation)
	_, err = env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, Urgency: 3})
	assert.ErrorAs(t, err, &validation)
	_, err = env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: uuid.New(), RequesterID: "x", Urgency: 3})
	assert.ErrorAs(t, err, &notFound)
}

func TestFulfillReinforcement_Manual(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incident, _ := dispatchedIncident(t, env)
	backup := env.addUnit(t, env.standard, 6, models.UnitAvailable)

	request, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{
		IncidentID:  incident.ID,
		RequesterID: "officer-1",
		Urgency:     2,
		Category:    "tactical",
	})
	require.NoError(t, err)

	env.advance(7*time.Minute + 20*time.Second)
	fulfilled, err := env.core.Reinforcements.FulfillReinforcement(ctx, request.ID, backup.ID, "dispatcher-9", "")

	require.NoError(t, err)
	assert.Equal(t, models.ReinforcementFulfilled, fulfilled.Status)
	assert.Equal(t, "dispatcher-9", fulfilled.FulfilledBy)
	require.NotNil(t, fulfilled.ResponseMinutes)
	assert.Equal(t, 7, *fulfilled.ResponseMinutes)
	assert.Equal(t, models.UnitEnRoute, env.unitStatus(t, backup.ID))

	// повторно закрепить нельзя
	_, err = env.core.Reinforcements.FulfillReinforcement(ctx, request.ID, backup.ID, "dispatcher-9", "")
	var precondition *PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestFulfillReinforcement_UnitUnavailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incident, primary := dispatchedIncident(t, env)
	request, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, RequesterID: "officer-1", Urgency: 1})
	require.NoError(t, err)

	_, err = env.core.Reinforcements.FulfillReinforcement(ctx, request.ID, primary.ID, "dispatcher-1", "")

	var unavailable *UnitUnavailableError
	require.ErrorAs(t, err, &unavailable)
	current, err := env.core.Reinforcements.GetReinforcement(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReinforcementPending, current.Status)
}

func TestFulfillReinforcement_ConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incident, _ := dispatchedIncident(t, env)
	request, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, RequesterID: "officer-1", Urgency: 3})
	require.NoError(t, err)

	const workers = 8
	units := make([]*models.Unit, workers)
	for i := range units {
		units[i] = env.addUnit(t, env.standard, float64(i+2), models.UnitAvailable)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for _, unit := range units {
		wg.Add(1)
		go func(unitID uuid.UUID) {
			defer wg.Done()
			_, err := env.core.Reinforcements.FulfillReinforcement(ctx, request.ID, unitID, "dispatcher", "")
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(unit.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	fulfilled, err := env.core.Reinforcements.GetReinforcement(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReinforcementFulfilled, fulfilled.Status)

	// проигравшие экипажи снова свободны
	for _, unit := range units {
		if unit.ID == *fulfilled.AssignedUnitID {
			assert.Equal(t, models.UnitEnRoute, env.unitStatus(t, unit.ID))
			continue
		}
		assert.Equal(t, models.UnitAvailable, env.unitStatus(t, unit.ID))
	}
}

func TestCancelReinforcement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incident, _ := dispatchedIncident(t, env)
	request, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, RequesterID: "officer-1", Urgency: 2})
	require.NoError(t, err)

	var validation *ValidationError
	_, err = env.core.Reinforcements.CancelReinforcement(ctx, request.ID, "", "dispatcher-1")
	require.ErrorAs(t, err, &validation)

	cancelled, err := env.core.Reinforcements.CancelReinforcement(ctx, request.ID, "situação controlada", "dispatcher-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReinforcementCancelled, cancelled.Status)
	assert.Equal(t, "situação controlada", cancelled.CancelReason)
	assert.Equal(t, "dispatcher-1", cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)

	var precondition *PreconditionError
	_, err = env.core.Reinforcements.CancelReinforcement(ctx, request.ID, "de novo", "dispatcher-1")
	assert.ErrorAs(t, err, &precondition)
}

func TestListPending_UrgencyThenRecency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incident, _ := dispatchedIncident(t, env)

	var ids []uuid.UUID
	for _, urgency := range []int{2, 3, 3, 1} {
		env.advance(time.Minute)
		request, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, RequesterID: "officer-1", Urgency: urgency})
		require.NoError(t, err)
		ids = append(ids, request.ID)
	}

	pending, err := env.core.Reinforcements.ListPending(ctx)

	require.NoError(t, err)
	require.Len(t, pending, 4)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0], ids[3]}, []uuid.UUID{pending[0].ID, pending[1].ID, pending[2].ID, pending[3].ID})
}

func TestRequestReinforcement_FinalizedIncident(t *testing.T) {
	env := newTestEnv(t)
	incident := env.seedIncident(t, models.IncidentFinalized)

	_, err := env.core.Reinforcements.RequestReinforcement(context.Background(), ReinforcementInput{IncidentID: incident.ID, RequesterID: "officer-1", Urgency: 5})

	var precondition *PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestRequestReinforcement_BeforeFirstDispatch(t *testing.T) {
	for _, status := range []models.IncidentStatus{models.IncidentOpened, models.IncidentUnitRequested} {
		env := newTestEnv(t)
		ctx := context.Background()
		incident := env.seedIncident(t, status)
		backup := env.addUnit(t, env.standard, 25, models.UnitAvailable)

		_, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: incident.ID, RequesterID: "officer-1", Urgency: 5})

		var precondition *PreconditionError
		require.ErrorAs(t, err, &precondition, "status %s", status)
		assert.Equal(t, models.UnitAvailable, env.unitStatus(t, backup.ID))
		requests, err := env.core.Reinforcements.List(ctx, models.ReinforcementFilter{IncidentID: incident.ID})
		require.NoError(t, err)
		assert.Empty(t, requests)
	}
}

func TestRequestReinforcement_PendingIncidentRecoversThroughRetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result := env.openIncident(t, "Furto")
	require.Nil(t, result.Dispatch)
	require.Equal(t, models.IncidentUnitRequested, result.Incident.Status)
	unit := env.addUnit(t, env.standard, 5, models.UnitAvailable)

	_, err := env.core.Reinforcements.RequestReinforcement(ctx, ReinforcementInput{IncidentID: result.Incident.ID, RequesterID: "officer-1", Urgency: 5})
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)

	// экипаж остался свободным, и повторный подбор доводит инцидент до выезда
	dispatched, err := env.core.Flow.RetryPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)
	assert.Equal(t, models.UnitEnRoute, env.unitStatus(t, unit.ID))

	incident, err := env.core.Flow.StartAttendance(ctx, result.Incident.ID, "officer-1")
	require.NoError(t, err)
	assert.Equal(t, models.IncidentInProgress, incident.Status)
}
