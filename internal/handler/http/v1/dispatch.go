package v1

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// @Summary Dispatch a unit manually
// @Description Bind an available unit to an incident. Requires API key.
// @Tags Dispatches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateDispatchRequest true "Dispatch request"
// @Success 201 {object} models.Dispatch
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident or unit not found"
// @Failure 409 {object} map[string]string "Unit not available or invalid transition"
// @Router /dispatches [post]
func (h *Handler) createDispatch(c *gin.Context) {
	var input CreateDispatchRequest
	log := h.logger.WithField("method", "createDispatch")
	if !h.bind(c, log, &input) {
		return
	}

	dispatch, err := h.services.Dispatches.CreateDispatch(c.Request.Context(), input.IncidentID, input.UnitID, input.Notes)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, dispatch)
}

// dispatchStep выполняет переход выезда без тела запроса
func (h *Handler) dispatchStep(method string, step func(ctx context.Context, id uuid.UUID) (*models.Dispatch, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "dispatch")
		if !ok {
			return
		}
		log := h.logger.WithField("method", method).WithField("id", id)

		dispatch, err := step(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, dispatch)
	}
}

// @Summary Accept a dispatch
// @Description The unit acknowledges the dispatch (sent -> in_field). Requires API key.
// @Tags Dispatches
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dispatch ID"
// @Success 200 {object} models.Dispatch
// @Failure 404 {object} map[string]string "Dispatch not found"
// @Failure 422 {object} map[string]string "Dispatch is not in sent state"
// @Router /dispatches/{id}/accept [post]
func (h *Handler) acceptDispatch(c *gin.Context) {
	h.dispatchStep("acceptDispatch", h.services.Dispatches.AcceptDispatch)(c)
}

// @Summary Register arrival
// @Description The unit arrived at the scene (in_field -> on_scene). Requires API key.
// @Tags Dispatches
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dispatch ID"
// @Success 200 {object} models.Dispatch
// @Failure 404 {object} map[string]string "Dispatch not found"
// @Failure 422 {object} map[string]string "Dispatch is not in field"
// @Router /dispatches/{id}/arrival [post]
func (h *Handler) registerArrival(c *gin.Context) {
	h.dispatchStep("registerArrival", h.services.Dispatches.RegisterArrival)(c)
}

// @Summary Register actions
// @Description Append one or more actions taken on scene. Requires API key.
// @Tags Dispatches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dispatch ID"
// @Param request body RegisterActionsRequest true "Actions (string or list)"
// @Success 200 {object} models.Dispatch
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Dispatch not found"
// @Failure 422 {object} map[string]string "Dispatch already closed"
// @Router /dispatches/{id}/actions [post]
func (h *Handler) registerActions(c *gin.Context) {
	id, ok := pathID(c, "dispatch")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "registerActions").WithField("id", id)

	var input RegisterActionsRequest
	if !h.bind(c, log, &input) {
		return
	}

	dispatch, err := h.services.Dispatches.RegisterActions(c.Request.Context(), id, input.Actions)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, dispatch)
}

// @Summary Close a dispatch
// @Description Complete a dispatch that has at least one action and release its unit. Requires API key.
// @Tags Dispatches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dispatch ID"
// @Param request body NotesRequest false "Closing notes"
// @Success 200 {object} models.Dispatch
// @Failure 404 {object} map[string]string "Dispatch not found"
// @Failure 422 {object} map[string]string "No actions registered or already closed"
// @Router /dispatches/{id}/close [post]
func (h *Handler) closeDispatch(c *gin.Context) {
	h.dispatchWithNotes(c, "closeDispatch", h.services.Dispatches.CloseDispatch)
}

// @Summary Cancel a dispatch
// @Description Cancel an active dispatch and release its unit. Requires API key.
// @Tags Dispatches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dispatch ID"
// @Param request body NotesRequest false "Cancellation notes"
// @Success 200 {object} models.Dispatch
// @Failure 404 {object} map[string]string "Dispatch not found"
// @Failure 422 {object} map[string]string "Dispatch already closed"
// @Router /dispatches/{id}/cancel [post]
func (h *Handler) cancelDispatch(c *gin.Context) {
	h.dispatchWithNotes(c, "cancelDispatch", h.services.Dispatches.CancelDispatch)
}

// dispatchWithNotes - тело с заметками необязательно
func (h *Handler) dispatchWithNotes(c *gin.Context, method string, step func(ctx context.Context, id uuid.UUID, notes string) (*models.Dispatch, error)) {
	id, ok := pathID(c, "dispatch")
	if !ok {
		return
	}
	log := h.logger.WithField("method", method).WithField("id", id)

	var input NotesRequest
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dispatch, err := step(c.Request.Context(), id, input.Notes)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, dispatch)
}

// @Summary Finalize attendance
// @Description Record the final actions, close the dispatch and finalize the incident. Requires API key.
// @Tags Dispatches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Dispatch ID"
// @Param request body FinalizeAttendanceRequest true "Final actions text"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Dispatch not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Failure 422 {object} map[string]string "Attendance not started"
// @Router /dispatches/{id}/finalize [post]
func (h *Handler) finalizeAttendance(c *gin.Context) {
	id, ok := pathID(c, "dispatch")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "finalizeAttendance").WithField("id", id)

	var input FinalizeAttendanceRequest
	if !h.bind(c, log, &input) {
		return
	}

	incident, err := h.services.Flow.FinalizeAttendance(c.Request.Context(), id, input.ActionsText)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}
