package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/config"
	"github.com/shenikar/dispatch_orchestrator/internal/handler/http/v1/mocks"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/repository"
	"github.com/shenikar/dispatch_orchestrator/internal/repository/memory"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
	"github.com/shenikar/dispatch_orchestrator/internal/webhook"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testAPIKey = "test-api-key"
	baseLat    = -19.9167
	baseLon    = -43.9345
)

var authHeader = map[string]string{"X-API-Key": testAPIKey}

// testServer - роутер, где прием и чтение инцидентов замоканы,
// а экипажи, выезды и подкрепления работают на хранилище в памяти
type testServer struct {
	router    *gin.Engine
	incidents *mocks.MockIncidentService
	flow      *mocks.MockFlowService
	core      *service.Core
}

func newTestHandler(t *testing.T) *testServer {
	ctrl := gomock.NewController(t)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := config.Default()
	cfg.APIKeys = []string{testAPIKey}

	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Departments().Create(ctx, &models.Department{Code: "PMMG", Name: "Polícia Militar", Kind: models.DepartmentStandard}))
	require.NoError(t, store.Departments().Create(ctx, &models.Department{Code: "DHPP", Name: "Homicídios", Kind: models.DepartmentHomicide}))
	core := service.NewCore(repository.NewMemoryRepositories(store), webhook.NopPublisher{}, cfg, logger, service.CoreOptions{})

	server := &testServer{
		incidents: mocks.NewMockIncidentService(ctrl),
		flow:      mocks.NewMockFlowService(ctrl),
		core:      core,
	}
	services := ServicesFromCore(core)
	services.Incidents = server.incidents
	services.Flow = server.flow

	handler := NewHandler(services, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	server.router = gin.New()
	api := server.router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return server
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

// registerUnit создает экипаж через API и ставит его в distanceKm к северу от базовой точки
func (s *testServer) registerUnit(t *testing.T, plate string, distanceKm float64) uuid.UUID {
	t.Helper()
	w := makeRequest(s.router, http.MethodPost, "/api/v1/units", jsonBody(t, RegisterUnitRequest{
		Plate:    plate,
		CallSign: "VTR-" + plate,
		Type:     "patrol",
	}), authHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var unit UnitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unit))

	w = makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/units/%s/positions", unit.ID), jsonBody(t, RecordPositionRequest{
		Latitude:  baseLat + distanceKm/111.195,
		Longitude: baseLon,
	}), authHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return unit.ID
}

// openIncident регистрирует инцидент напрямую в ядре, минуя замоканный прием
func (s *testServer) openIncident(t *testing.T) *service.IntakeResult {
	t.Helper()
	result, err := s.core.Flow.ProcessNewIncident(context.Background(), service.NewIncident{Type: "Furto", Latitude: baseLat, Longitude: baseLon})
	require.NoError(t, err)
	return result
}

func TestHealthCheck_NoAuth(t *testing.T) {
	s := newTestHandler(t)

	w := makeRequest(s.router, http.MethodGet, "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAuth(t *testing.T) {
	s := newTestHandler(t)
	s.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Return([]*models.Incident{}, nil).Times(1)

	w := makeRequest(s.router, http.MethodGet, "/api/v1/incidents", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")

	w = makeRequest(s.router, http.MethodGet, "/api/v1/incidents", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")

	w = makeRequest(s.router, http.MethodGet, "/api/v1/incidents", nil, map[string]string{"Authorization": "Bearer " + testAPIKey})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateIncident_Success(t *testing.T) {
	s := newTestHandler(t)
	incidentID := uuid.New()
	dispatchID := uuid.New()

	s.flow.EXPECT().
		ProcessNewIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input service.NewIncident) (*service.IntakeResult, error) {
			assert.Equal(t, "Furto", input.Type)
			assert.Equal(t, models.PriorityHigh, input.Priority)
			return &service.IntakeResult{
				Incident: &models.Incident{
					ID:       incidentID,
					Protocol: "OC-2025-00001",
					Type:     input.Type,
					Status:   models.IncidentDispatched,
					Priority: input.Priority,
				},
				Branch:   service.BranchStandard,
				Dispatch: &models.Dispatch{ID: dispatchID, IncidentID: incidentID, Status: models.DispatchSent},
			}, nil
		}).Times(1)

	w := makeRequest(s.router, http.MethodPost, "/api/v1/incidents", jsonBody(t, CreateIncidentRequest{
		Type:      "Furto",
		Latitude:  baseLat,
		Longitude: baseLon,
		Priority:  "high",
	}), authHeader)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IntakeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.Incident.ID)
	assert.Equal(t, "OC-2025-00001", resp.Incident.Protocol)
	assert.Equal(t, service.BranchStandard, resp.Branch)
	require.NotNil(t, resp.Dispatch)
	assert.Equal(t, dispatchID, resp.Dispatch.ID)
}

func TestCreateIncident_InvalidJSON(t *testing.T) {
	s := newTestHandler(t)
	s.flow.EXPECT().ProcessNewIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(s.router, http.MethodPost, "/api/v1/incidents", bytes.NewBufferString(`{"type": "Furto"`), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCreateIncident_ValidationError(t *testing.T) {
	s := newTestHandler(t)
	s.flow.EXPECT().ProcessNewIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(s.router, http.MethodPost, "/api/v1/incidents", jsonBody(t, CreateIncidentRequest{
		Latitude:  baseLat,
		Longitude: baseLon,
	}), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Type' failed on the 'required' tag")

	w = makeRequest(s.router, http.MethodPost, "/api/v1/incidents", jsonBody(t, CreateIncidentRequest{
		Type:      "Furto",
		Latitude:  95,
		Longitude: baseLon,
	}), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'Latitude' failed on the 'latitude' tag")
}

func TestCreateIncident_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", &service.ValidationError{Field: "type", Reason: "is required"}, http.StatusBadRequest, "invalid type"},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestHandler(t)
			s.flow.EXPECT().ProcessNewIncident(gomock.Any(), gomock.Any()).Return(nil, tt.err).Times(1)

			w := makeRequest(s.router, http.MethodPost, "/api/v1/incidents", jsonBody(t, CreateIncidentRequest{
				Type:      "Furto",
				Latitude:  baseLat,
				Longitude: baseLon,
			}), authHeader)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestGetIncident_Success(t *testing.T) {
	s := newTestHandler(t)
	incidentID := uuid.New()
	details := &service.IncidentDetails{
		Incident:    &models.Incident{ID: incidentID, Protocol: "OC-2025-00007", Status: models.IncidentInProgress},
		CanFinalize: true,
	}
	s.incidents.EXPECT().ConsultIncident(gomock.Any(), incidentID).Return(details, nil).Times(1)

	w := makeRequest(s.router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OC-2025-00007")
	assert.Contains(t, w.Body.String(), `"can_finalize":true`)
}

func TestGetIncident_InvalidID(t *testing.T) {
	s := newTestHandler(t)
	s.incidents.EXPECT().ConsultIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(s.router, http.MethodGet, "/api/v1/incidents/invalid-uuid", nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	s := newTestHandler(t)
	incidentID := uuid.New()
	s.incidents.EXPECT().
		ConsultIncident(gomock.Any(), incidentID).
		Return(nil, &service.NotFoundError{Entity: "incident", ID: incidentID.String()}).
		Times(1)

	w := makeRequest(s.router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil, authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestListIncidents_PassesFilter(t *testing.T) {
	s := newTestHandler(t)
	expected := []*models.Incident{
		{ID: uuid.New(), Protocol: "OC-2025-00002", Status: models.IncidentUnitRequested},
		{ID: uuid.New(), Protocol: "OC-2025-00001", Status: models.IncidentUnitRequested},
	}
	s.incidents.EXPECT().
		ListIncidents(gomock.Any(), models.IncidentFilter{Status: models.IncidentUnitRequested, Page: 2, PageSize: 5}).
		Return(expected, nil).
		Times(1)

	w := makeRequest(s.router, http.MethodGet, "/api/v1/incidents?status=unit_requested&page=2&pageSize=5", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "OC-2025-00002", resp[0].Protocol)
}

func TestIncidentHistory(t *testing.T) {
	s := newTestHandler(t)
	incidentID := uuid.New()
	history := []*models.TransitionLogEntry{
		{IncidentID: incidentID, From: models.IncidentInitial, To: models.IncidentOpened, At: time.Now()},
		{IncidentID: incidentID, From: models.IncidentOpened, To: models.IncidentUnitRequested, At: time.Now()},
	}
	s.incidents.EXPECT().History(gomock.Any(), incidentID).Return(history, nil).Times(1)

	w := makeRequest(s.router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s/history", incidentID), nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []models.TransitionLogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, models.IncidentUnitRequested, resp[1].To)
}

func TestStartAttendance_Precondition(t *testing.T) {
	s := newTestHandler(t)
	incidentID := uuid.New()
	s.flow.EXPECT().
		StartAttendance(gomock.Any(), incidentID, "officer-1").
		Return(nil, &service.PreconditionError{Reason: "incident is unit_requested, expected dispatched"}).
		Times(1)

	w := makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/attendance", incidentID),
		jsonBody(t, StartAttendanceRequest{OfficerID: "officer-1"}), authHeader)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "precondition failed")
}

func TestFinalizeAttendance_InvalidTransition(t *testing.T) {
	s := newTestHandler(t)
	dispatchID := uuid.New()
	s.flow.EXPECT().
		FinalizeAttendance(gomock.Any(), dispatchID, "Relatório").
		Return(nil, &service.InvalidTransitionError{From: models.IncidentDispatched, To: models.IncidentFinalized}).
		Times(1)

	w := makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/dispatches/%s/finalize", dispatchID),
		jsonBody(t, FinalizeAttendanceRequest{ActionsText: "Relatório"}), authHeader)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "invalid transition from dispatched to finalized")
}

func TestDispatchLifecycle(t *testing.T) {
	s := newTestHandler(t)
	unitID := s.registerUnit(t, "ABC1234", 2)
	result := s.openIncident(t)
	require.NotNil(t, result.Dispatch)
	require.Equal(t, unitID, result.Dispatch.UnitID)
	base := fmt.Sprintf("/api/v1/dispatches/%s", result.Dispatch.ID)

	w := makeRequest(s.router, http.MethodPost, base+"/accept", nil, authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"in_field"`)

	// повторное подтверждение недопустимо
	w = makeRequest(s.router, http.MethodPost, base+"/accept", nil, authHeader)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = makeRequest(s.router, http.MethodPost, base+"/arrival", nil, authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"on_scene"`)

	// без действий закрыть нельзя
	w = makeRequest(s.router, http.MethodPost, base+"/close", nil, authHeader)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = makeRequest(s.router, http.MethodPost, base+"/actions", bytes.NewBufferString(`{"actions": "Vítima atendida"}`), authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = makeRequest(s.router, http.MethodPost, base+"/actions", bytes.NewBufferString(`{"actions": ["Perícia acionada", "Local isolado"]}`), authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dispatch models.Dispatch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dispatch))
	require.Len(t, dispatch.Actions, 3)
	assert.Equal(t, "Vítima atendida", dispatch.Actions[0].Text)

	w = makeRequest(s.router, http.MethodPost, base+"/close", jsonBody(t, NotesRequest{Notes: "encerrado"}), authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	unit, err := s.core.Units.GetUnit(context.Background(), unitID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, unit.Status)
}

func TestRegisterActions_InvalidPayload(t *testing.T) {
	s := newTestHandler(t)
	dispatchID := uuid.New()

	w := makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/dispatches/%s/actions", dispatchID), bytes.NewBufferString(`{"actions": 5}`), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/dispatches/%s/actions", dispatchID), bytes.NewBufferString(`{"actions": "  "}`), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid actions")
}

func TestCreateDispatch_UnitUnavailable(t *testing.T) {
	s := newTestHandler(t)
	unitID := s.registerUnit(t, "BUSY001", 1)
	first := s.openIncident(t)
	require.NotNil(t, first.Dispatch)
	second := s.openIncident(t)
	require.Nil(t, second.Dispatch)

	w := makeRequest(s.router, http.MethodPost, "/api/v1/dispatches", jsonBody(t, CreateDispatchRequest{
		IncidentID: second.Incident.ID,
		UnitID:     unitID,
	}), authHeader)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "is not available")
}

func TestCancelDispatch_ReleasesUnit(t *testing.T) {
	s := newTestHandler(t)
	unitID := s.registerUnit(t, "CANC001", 1)
	result := s.openIncident(t)
	require.NotNil(t, result.Dispatch)

	w := makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/dispatches/%s/cancel", result.Dispatch.ID), nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
	unit, err := s.core.Units.GetUnit(context.Background(), unitID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, unit.Status)
}

func TestRegisterUnit_Duplicate(t *testing.T) {
	s := newTestHandler(t)
	s.registerUnit(t, "DUP0001", 1)

	w := makeRequest(s.router, http.MethodPost, "/api/v1/units", jsonBody(t, RegisterUnitRequest{Plate: "DUP0001", CallSign: "OTHER"}), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestUpdateUnitStatus(t *testing.T) {
	s := newTestHandler(t)
	unitID := s.registerUnit(t, "STAT001", 1)
	url := fmt.Sprintf("/api/v1/units/%s/status", unitID)

	w := makeRequest(s.router, http.MethodPatch, url, jsonBody(t, UpdateUnitStatusRequest{Status: "en_route"}), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(s.router, http.MethodPatch, url, jsonBody(t, UpdateUnitStatusRequest{Status: "maintenance"}), authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"maintenance"`)

	w = makeRequest(s.router, http.MethodPatch, url, jsonBody(t, UpdateUnitStatusRequest{Status: "available"}), authHeader)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, s.openIncident(t).Dispatch)

	// экипаж на выезде: ручная смена статуса запрещена
	w = makeRequest(s.router, http.MethodPatch, url, jsonBody(t, UpdateUnitStatusRequest{Status: "maintenance"}), authHeader)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = makeRequest(s.router, http.MethodPatch, fmt.Sprintf("/api/v1/units/%s/status", uuid.New()), jsonBody(t, UpdateUnitStatusRequest{Status: "available"}), authHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListNearbyUnits(t *testing.T) {
	s := newTestHandler(t)
	near := s.registerUnit(t, "NEAR001", 1)
	s.registerUnit(t, "FAR0001", 30)

	w := makeRequest(s.router, http.MethodGet, fmt.Sprintf("/api/v1/units/nearby?lat=%f&lon=%f&radius_km=5", baseLat, baseLon), nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp []NearbyUnitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, near, resp[0].Unit.ID)
	assert.InDelta(t, 1.0, resp[0].DistanceKm, 0.01)

	w = makeRequest(s.router, http.MethodGet, "/api/v1/units/nearby?lon=1", nil, authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(s.router, http.MethodGet, fmt.Sprintf("/api/v1/units/nearby?lat=%f&lon=%f&radius_km=0", baseLat, baseLon), nil, authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordPosition_UnknownUnit(t *testing.T) {
	s := newTestHandler(t)

	w := makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/units/%s/positions", uuid.New()), jsonBody(t, RecordPositionRequest{
		Latitude:  baseLat,
		Longitude: baseLon,
	}), authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReinforcementEndpoints(t *testing.T) {
	s := newTestHandler(t)
	s.registerUnit(t, "PRIM001", 1)
	result := s.openIncident(t)
	require.NotNil(t, result.Dispatch)
	backup := s.registerUnit(t, "BACK001", 3)

	w := makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/reinforcements", result.Incident.ID),
		jsonBody(t, CreateReinforcementRequest{RequesterID: "officer-1", Urgency: 7}), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/reinforcements", result.Incident.ID),
		jsonBody(t, CreateReinforcementRequest{RequesterID: "officer-1", Urgency: 2, Category: "tactical"}), authHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var request models.ReinforcementRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))
	assert.Equal(t, models.ReinforcementPending, request.Status)

	w = makeRequest(s.router, http.MethodGet, "/api/v1/reinforcements/pending", nil, authHeader)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.ReinforcementRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, request.ID, pending[0].ID)

	w = makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/reinforcements/%s/fulfill", request.ID),
		jsonBody(t, FulfillReinforcementRequest{UnitID: backup, ResponsibleUserID: "dispatcher-1"}), authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"fulfilled"`)

	w = makeRequest(s.router, http.MethodPost, fmt.Sprintf("/api/v1/reinforcements/%s/cancel", request.ID),
		jsonBody(t, CancelReinforcementRequest{Reason: "tarde demais", UserID: "dispatcher-1"}), authHeader)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = makeRequest(s.router, http.MethodGet, fmt.Sprintf("/api/v1/reinforcements/%s", uuid.New()), nil, authHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.NotFoundError{Entity: "unit", ID: "x"}, http.StatusNotFound},
		{&service.NoUnitAvailableError{}, http.StatusNotFound},
		{&service.ValidationError{Field: "f", Reason: "r"}, http.StatusBadRequest},
		{&service.InvalidTransitionError{}, http.StatusConflict},
		{&service.UnitUnavailableError{}, http.StatusConflict},
		{&service.PreconditionError{Reason: "r"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("service: wrapped: %w", &service.PreconditionError{Reason: "r"}), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestActionsPayload_UnmarshalJSON(t *testing.T) {
	var single ActionsPayload
	require.NoError(t, json.Unmarshal([]byte(`"uma ação"`), &single))
	assert.Equal(t, ActionsPayload{"uma ação"}, single)

	var list ActionsPayload
	require.NoError(t, json.Unmarshal([]byte(`["a", "b"]`), &list))
	assert.Equal(t, ActionsPayload{"a", "b"}, list)

	var invalid ActionsPayload
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &invalid))
}

func TestCreateIncident_PartialRouting(t *testing.T) {
	s := newTestHandler(t)
	incidentID := uuid.New()
	s.flow.EXPECT().
		ProcessNewIncident(gomock.Any(), gomock.Any()).
		Return(&service.IntakeResult{
			Incident: &models.Incident{ID: incidentID, Status: models.IncidentOpened},
			Branch:   service.BranchStandard,
		}, errors.New("redis unavailable")).
		Times(1)

	w := makeRequest(s.router, http.MethodPost, "/api/v1/incidents", jsonBody(t, CreateIncidentRequest{
		Type:      "Furto",
		Latitude:  baseLat,
		Longitude: baseLon,
	}), authHeader)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IntakeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.Incident.ID)
	assert.Equal(t, "redis unavailable", resp.Warning)
}

func TestExternalCall_IntegratesAndLinksIncident(t *testing.T) {
	s := newTestHandler(t)
	unitID := s.registerUnit(t, "EXT1A23", 1.5)

	request := ExternalCallRequest{
		ExternalProtocol: "SIAD-2025-0042",
		SourceSystem:     "SIAD",
		IncidentType:     "THEFT",
		Description:      "Furto de celular",
		Location:         "Praça Sete",
		Latitude:         baseLat,
		Longitude:        baseLon,
		Priority:         "LOW",
		CallerPhone:      "+55 31 98888-1111",
	}
	w := makeRequest(s.router, http.MethodPost, "/api/v1/calls/external", jsonBody(t, request), authHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response ExternalCallResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "SIAD-2025-0042", response.ExternalProtocol)
	assert.Equal(t, response.Intake.Incident.Protocol, response.InternalProtocol)
	assert.Equal(t, "Furto", response.Intake.Incident.Type)
	assert.Equal(t, string(models.PriorityLow), response.Intake.Incident.Priority)
	require.NotNil(t, response.Intake.Dispatch)
	assert.Equal(t, unitID, response.Intake.Dispatch.UnitID)

	// повтор того же протокола
	w = makeRequest(s.router, http.MethodPost, "/api/v1/calls/external", jsonBody(t, request), authHeader)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = makeRequest(s.router, http.MethodGet, "/api/v1/calls/"+response.Call.ID.String(), nil, authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var details service.CallDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	require.Len(t, details.Incidents, 1)
	assert.Equal(t, response.Intake.Incident.ID, details.Incidents[0].ID)
}

func TestExternalCall_ValidationError(t *testing.T) {
	s := newTestHandler(t)

	w := makeRequest(s.router, http.MethodPost, "/api/v1/calls/external", jsonBody(t, map[string]any{
		"external_protocol": "SIAD-1",
		"incident_type":     "ROBBERY",
		"latitude":          baseLat,
		"longitude":         baseLon,
	}), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallEndpoints(t *testing.T) {
	s := newTestHandler(t)

	w := makeRequest(s.router, http.MethodPost, "/api/v1/calls", jsonBody(t, RegisterCallRequest{CallerName: "Ana", CallerPhone: "190"}), authHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var call models.Call
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &call))
	assert.NotEqual(t, uuid.Nil, call.ID)

	w = makeRequest(s.router, http.MethodPost, "/api/v1/calls", jsonBody(t, RegisterCallRequest{Notes: "anônimo"}), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(s.router, http.MethodGet, "/api/v1/calls", nil, authHeader)
	require.Equal(t, http.StatusOK, w.Code)
	var calls []models.Call
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &calls))
	require.Len(t, calls, 1)
	assert.Equal(t, call.ID, calls[0].ID)

	w = makeRequest(s.router, http.MethodGet, "/api/v1/calls?from=yesterday", nil, authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(s.router, http.MethodGet, "/api/v1/calls/"+uuid.NewString(), nil, authHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExternalBatch(t *testing.T) {
	s := newTestHandler(t)

	call := ExternalCallRequest{
		ExternalProtocol: "B-1",
		IncidentType:     "VANDALISM",
		Description:      "Pichação",
		Location:         "Viaduto Santa Tereza",
		Latitude:         baseLat,
		Longitude:        baseLon,
	}
	w := makeRequest(s.router, http.MethodPost, "/api/v1/calls/external/batch", jsonBody(t, ExternalBatchRequest{
		Calls: []ExternalCallRequest{call, call},
	}), authHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var batch service.ExternalBatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Equal(t, 2, batch.Total)
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)

	w = makeRequest(s.router, http.MethodPost, "/api/v1/calls/external/batch", jsonBody(t, ExternalBatchRequest{}), authHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
