package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestProcessNewIncident_ProtocolSequence(t *testing.T) {
	env := newTestEnv(t)

	env.openIncident(t, "Furto")
	env.openIncident(t, "Roubo")
	third := env.openIncident(t, "Vandalismo")

	assert.Equal(t, "OC-2025-00003", third.Incident.Protocol)
}

func TestProcessNewIncident_ProtocolResetsPerYear(t *testing.T) {
	env := newTestEnv(t)
	env.openIncident(t, "Furto")

	env.mu.Lock()
	env.now = time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	env.mu.Unlock()

	next := env.openIncident(t, "Furto")
	assert.Equal(t, "OC-2026-00001", next.Incident.Protocol)
}

func TestProcessNewIncident_ConcurrentProtocolsUnique(t *testing.T) {
	env := newTestEnv(t)

	const workers = 25
	var wg sync.WaitGroup
	protocols := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.core.Flow.ProcessNewIncident(context.Background(), NewIncident{Type: "Furto", Latitude: baseLat, Longitude: baseLon})
			if assert.NoError(t, err) {
				protocols <- result.Incident.Protocol
			}
		}()
	}
	wg.Wait()
	close(protocols)

	seen := make(map[string]bool)
	for protocol := range protocols {
		assert.False(t, seen[protocol], "duplicate protocol %s", protocol)
		seen[protocol] = true
	}
	assert.Len(t, seen, workers)
}

func TestProcessNewIncident_StandardDispatchesNearestAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	available := env.addUnit(t, env.standard, 3, models.UnitAvailable)
	unavailable := env.addUnit(t, env.standard, 1, models.UnitUnavailable)

	result := env.openIncident(t, "Furto")

	assert.Equal(t, BranchStandard, result.Branch)
	require.NotNil(t, result.Dispatch)
	assert.Equal(t, available.ID, result.Dispatch.UnitID)
	assert.NotEqual(t, unavailable.ID, result.Dispatch.UnitID)
	assert.Equal(t, models.IncidentDispatched, result.Incident.Status)
	assert.Equal(t, env.standard.ID, result.Incident.DepartmentID)
	assert.Equal(t, models.UnitEnRoute, env.unitStatus(t, available.ID))
	assert.Equal(t, models.UnitUnavailable, env.unitStatus(t, unavailable.ID))

	history, err := env.core.StateMachine.History(ctx, result.Incident.ID)
	require.NoError(t, err)
	var path []models.IncidentStatus
	for _, entry := range history {
		path = append(path, entry.To)
	}
	assert.Equal(t, []models.IncidentStatus{models.IncidentOpened, models.IncidentUnitRequested, models.IncidentDispatched}, path)

	audit, err := env.store.Audit().ListByIncident(ctx, result.Incident.ID)
	require.NoError(t, err)
	require.NotEmpty(t, audit)
	assert.Equal(t, "routing_decision", audit[len(audit)-1].Kind)
	assert.Equal(t, BranchStandard, audit[len(audit)-1].Payload["branch"])
	assert.Contains(t, env.eventTypes(), "incident.created")
}

func TestProcessNewIncident_StandardSkipsHomicideUnits(t *testing.T) {
	env := newTestEnv(t)
	homicideUnit := env.addUnit(t, env.homicide, 1, models.UnitAvailable)
	patrol := env.addUnit(t, env.standard, 4, models.UnitAvailable)

	result := env.openIncident(t, "Furto")

	require.NotNil(t, result.Dispatch)
	assert.Equal(t, patrol.ID, result.Dispatch.UnitID)
	assert.Equal(t, models.UnitAvailable, env.unitStatus(t, homicideUnit.ID))
}

func TestProcessNewIncident_NoUnitLeavesPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUnit(t, env.standard, 25, models.UnitAvailable)

	result := env.openIncident(t, "Furto")

	assert.Nil(t, result.Dispatch)
	assert.Equal(t, models.IncidentUnitRequested, result.Incident.Status)

	audit, err := env.store.Audit().ListByIncident(ctx, result.Incident.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Nil(t, audit[0].Payload["unit_id"])
}

func TestProcessNewIncident_HomicideBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUnit(t, env.standard, 0.5, models.UnitAvailable)
	homicideUnit := env.addUnit(t, env.homicide, 8, models.UnitAvailable)

	result := env.openIncident(t, "Homicídio")

	assert.Equal(t, BranchHomicide, result.Branch)
	assert.Equal(t, env.homicide.ID, result.Incident.DepartmentID)
	assert.Equal(t, models.PriorityHigh, result.Incident.Priority)

	checklist, err := env.store.Homicide().ListChecklist(ctx, result.Incident.ID)
	require.NoError(t, err)
	assert.Len(t, checklist, 5)
	for _, item := range checklist {
		assert.Equal(t, "pending", item.Status)
	}

	team, err := env.store.Homicide().ListTeamRequests(ctx, result.Incident.ID)
	require.NoError(t, err)
	roles := make([]models.TeamRole, 0, len(team))
	for _, request := range team {
		roles = append(roles, request.Role)
	}
	assert.Contains(t, roles, models.RoleInvestigator)
	assert.Contains(t, roles, models.RoleForensicAnalyst)
	assert.Contains(t, roles, models.RolePhotographer)

	// группа только из отдела убийств, даже если обычный экипаж ближе
	require.NotNil(t, result.Dispatch)
	assert.Equal(t, homicideUnit.ID, result.Dispatch.UnitID)
	assert.Equal(t, models.DispatchKindHomicide, result.Dispatch.Kind)
	assert.Equal(t, models.IncidentDispatched, result.Incident.Status)

	require.NotNil(t, result.Homicide)
	assert.Equal(t, 100, result.Homicide.Perimeter.RadiusMeters)
}

func TestProcessNewIncident_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	var validation *ValidationError

	_, err := env.core.Flow.ProcessNewIncident(ctx, NewIncident{Type: " "})
	assert.ErrorAs(t, err, &validation)

	_, err = env.core.Flow.ProcessNewIncident(ctx, NewIncident{Type: "Furto", Latitude: 91})
	assert.ErrorAs(t, err, &validation)

	_, err = env.core.Flow.ProcessNewIncident(ctx, NewIncident{Type: "Furto", Priority: "urgent"})
	assert.ErrorAs(t, err, &validation)
}

func TestAttendance_FullCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	unit := env.addUnit(t, env.standard, 2, models.UnitAvailable)
	result := env.openIncident(t, "Furto")
	require.NotNil(t, result.Dispatch)

	started, err := env.core.Flow.StartAttendance(ctx, result.Incident.ID, "officer-7")
	require.NoError(t, err)
	assert.Equal(t, models.IncidentInProgress, started.Status)

	dispatch, err := env.core.Dispatch.GetDispatch(ctx, result.Dispatch.ID)
	require.NoError(t, err)
	assert.NotNil(t, dispatch.AttendanceStartedAt)

	// нет ни одного действия: закрыть нельзя
	_, err = env.core.Flow.FinalizeAttendance(ctx, result.Dispatch.ID, "Relatório final")
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)

	_, err = env.core.Dispatch.RegisterActions(ctx, result.Dispatch.ID, []string{"Vítima atendida"})
	require.NoError(t, err)

	env.advance(30 * time.Minute)
	finalized, err := env.core.Flow.FinalizeAttendance(ctx, result.Dispatch.ID, "Relatório final")
	require.NoError(t, err)
	assert.Equal(t, models.IncidentFinalized, finalized.Status)
	require.NotNil(t, finalized.ClosedAt)
	assert.Equal(t, env.clock(), *finalized.ClosedAt)

	closed, err := env.core.Dispatch.GetDispatch(ctx, result.Dispatch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchCompleted, closed.Status)
	require.Len(t, closed.Actions, 2)
	assert.Equal(t, "Relatório final", closed.Actions[1].Text)
	assert.Equal(t, models.UnitAvailable, env.unitStatus(t, unit.ID))
}

func TestStartAttendance_RequiresDispatched(t *testing.T) {
	env := newTestEnv(t)
	incident := env.seedIncident(t, models.IncidentUnitRequested)

	_, err := env.core.Flow.StartAttendance(context.Background(), incident.ID, "officer-1")

	var precondition *PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestFinalizeAttendance_EmptyText(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.core.Flow.FinalizeAttendance(context.Background(), uuid.New(), "   ")

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestFinalizeAttendance_ReleasesOtherDispatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUnit(t, env.standard, 1, models.UnitAvailable)
	backup := env.addUnit(t, env.standard, 4, models.UnitAvailable)
	result := env.openIncident(t, "Furto")

	extra, err := env.core.Dispatch.Allocate(ctx, Allocation{IncidentID: result.Incident.ID, UnitID: backup.ID, Kind: models.DispatchKindReinforcement})
	require.NoError(t, err)

	_, err = env.core.Flow.StartAttendance(ctx, result.Incident.ID, "officer-2")
	require.NoError(t, err)
	_, err = env.core.Dispatch.RegisterActions(ctx, result.Dispatch.ID, []string{"Local isolado"})
	require.NoError(t, err)
	_, err = env.core.Flow.FinalizeAttendance(ctx, result.Dispatch.ID, "Ocorrência encerrada")
	require.NoError(t, err)

	released, err := env.core.Dispatch.GetDispatch(ctx, extra.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchCancelled, released.Status)
	assert.Equal(t, models.UnitAvailable, env.unitStatus(t, backup.ID))
}

func TestRetryPending_DispatchesWhenUnitFreesUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	unit := env.addUnit(t, env.standard, 2, models.UnitMaintenance)
	result := env.openIncident(t, "Furto")
	require.Equal(t, models.IncidentUnitRequested, result.Incident.Status)

	dispatched, err := env.core.Flow.RetryPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, dispatched)

	_, err = env.core.Units.UpdateStatus(ctx, unit.ID, models.UnitAvailable)
	require.NoError(t, err)

	dispatched, err = env.core.Flow.RetryPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)

	current, err := env.store.Incidents().GetByID(ctx, result.Incident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentDispatched, current.Status)
}

func TestDefaultClassifier(t *testing.T) {
	classify := DefaultClassifier()

	for _, incidentType := range []string{"Homicídio", "HOMICIDIO doloso", "Assassinato", "Morte suspeita", "óbito"} {
		assert.True(t, classify(incidentType), incidentType)
	}
	for _, incidentType := range []string{"Furto", "Roubo", "Acidente de trânsito"} {
		assert.False(t, classify(incidentType), incidentType)
	}
}

func TestClassifier_Injectable(t *testing.T) {
	env := newTestEnv(t)
	env.core = NewCore(env.repos(), env.publisher, env.cfg, env.core.Flow.(*flowService).logger, CoreOptions{
		Clock:      env.clock,
		Classifier: KeywordClassifier("latrocínio"),
	})

	result := env.openIncident(t, "Latrocínio")

	assert.Equal(t, BranchHomicide, result.Branch)
}

func TestNextProtocol_Bounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIncidentRepository(ctrl)
	ctx := context.Background()
	at := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)

	repo.EXPECT().NextProtocolSequence(ctx, 2025).Return(MaxProtocolSequence, nil).Times(1)
	protocol, err := nextProtocol(ctx, repo, at)
	require.NoError(t, err)
	assert.Equal(t, "OC-2025-99999", protocol)

	repo.EXPECT().NextProtocolSequence(ctx, 2025).Return(MaxProtocolSequence+1, nil).Times(1)
	_, err = nextProtocol(ctx, repo, at)
	assert.ErrorIs(t, err, ErrProtocolExhausted)
}
