package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/config"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
	"github.com/sirupsen/logrus"
)

// Services - сервисы ядра, доступные через HTTP
type Services struct {
	Flow           service.FlowService
	Incidents      service.IncidentService
	Dispatches     service.DispatchService
	Reinforcements service.ReinforcementService
	Units          service.UnitService
	Calls          service.CallService
}

// ServicesFromCore берет сервисы из собранного ядра
func ServicesFromCore(core *service.Core) Services {
	return Services{
		Flow:           core.Flow,
		Incidents:      core.Incidents,
		Dispatches:     core.Dispatch,
		Reinforcements: core.Reinforcements,
		Units:          core.Units,
		Calls:          core.Calls,
	}
}

type Handler struct {
	services Services
	logger   *logrus.Logger
	validate *validator.Validate
	cfg      *config.Config
}

func NewHandler(services Services, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// bind разбирает JSON и проверяет теги validate; при ошибке ответ уже записан
func (h *Handler) bind(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// pathID разбирает UUID из параметра пути; entity попадает в текст ошибки
func pathID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + entity + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Register a new incident
// @Description Register an incident, classify it and try to dispatch the nearest unit. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body CreateIncidentRequest true "Incident intake request"
// @Success 201 {object} IntakeResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")
	if !h.bind(c, log, &input) {
		return
	}

	result, err := h.services.Flow.ProcessNewIncident(c.Request.Context(), DTOToNewIncident(input))
	if err != nil && (result == nil || result.Incident == nil) {
		respondError(c, log, err)
		return
	}
	response := IntakeToResponse(result)
	if err != nil {
		// инцидент зарегистрирован, маршрутизация прервана
		log.WithError(err).Warn("Incident registered with incomplete routing")
		response.Warning = err.Error()
	}
	c.JSON(http.StatusCreated, response)
}

// @Summary Get a list of incidents
// @Description Get a paginated list of incidents, newest first. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	incidents, err := h.services.Incidents.ListIncidents(c.Request.Context(), models.IncidentFilter{
		Status:   models.IncidentStatus(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Consult an incident
// @Description Get an incident with its dispatches, history, reinforcements and homicide protocol records. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} service.IncidentDetails
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := pathID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	details, err := h.services.Incidents.ConsultIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// @Summary Get incident transition history
// @Description Get the ordered state transition log of an incident. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {array} models.TransitionLogEntry
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Router /incidents/{id}/history [get]
func (h *Handler) incidentHistory(c *gin.Context) {
	id, ok := pathID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "incidentHistory").WithField("id", id)

	history, err := h.services.Incidents.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// @Summary Start attendance
// @Description Move a dispatched incident to in_progress once the unit begins attending. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body StartAttendanceRequest true "Officer starting attendance"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 422 {object} map[string]string "Incident is not dispatched"
// @Router /incidents/{id}/attendance [post]
func (h *Handler) startAttendance(c *gin.Context) {
	id, ok := pathID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "startAttendance").WithField("id", id)

	var input StartAttendanceRequest
	if !h.bind(c, log, &input) {
		return
	}

	incident, err := h.services.Flow.StartAttendance(c.Request.Context(), id, input.OfficerID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
