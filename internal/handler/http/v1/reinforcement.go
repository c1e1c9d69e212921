package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
)

// @Summary Request reinforcement
// @Description Request backup for an incident; urgency 4-5 is fulfilled automatically when a unit is free. Requires API key.
// @Tags Reinforcements
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body CreateReinforcementRequest true "Reinforcement request"
// @Success 201 {object} models.ReinforcementRequest
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 422 {object} map[string]string "Incident already finalized"
// @Router /incidents/{id}/reinforcements [post]
func (h *Handler) requestReinforcement(c *gin.Context) {
	id, ok := pathID(c, "incident")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "requestReinforcement").WithField("incident_id", id)

	var input CreateReinforcementRequest
	if !h.bind(c, log, &input) {
		return
	}

	request, err := h.services.Reinforcements.RequestReinforcement(c.Request.Context(), service.ReinforcementInput{
		IncidentID:  id,
		RequesterID: input.RequesterID,
		Urgency:     input.Urgency,
		Category:    input.Category,
		Notes:       input.Notes,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// @Summary List pending reinforcements
// @Description Pending requests ordered by urgency, then most recent first. Requires API key.
// @Tags Reinforcements
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.ReinforcementRequest
// @Router /reinforcements/pending [get]
func (h *Handler) listPendingReinforcements(c *gin.Context) {
	log := h.logger.WithField("method", "listPendingReinforcements")

	pending, err := h.services.Reinforcements.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// @Summary Get reinforcement
// @Tags Reinforcements
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Reinforcement ID"
// @Success 200 {object} models.ReinforcementRequest
// @Failure 404 {object} map[string]string "Reinforcement not found"
// @Router /reinforcements/{id} [get]
func (h *Handler) getReinforcement(c *gin.Context) {
	id, ok := pathID(c, "reinforcement")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getReinforcement").WithField("id", id)

	request, err := h.services.Reinforcements.GetReinforcement(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// @Summary Fulfill reinforcement
// @Description Assign an available unit to a pending request. Requires API key.
// @Tags Reinforcements
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Reinforcement ID"
// @Param request body FulfillReinforcementRequest true "Assigned unit"
// @Success 200 {object} models.ReinforcementRequest
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Reinforcement or unit not found"
// @Failure 409 {object} map[string]string "Unit not available"
// @Failure 422 {object} map[string]string "Request is not pending"
// @Router /reinforcements/{id}/fulfill [post]
func (h *Handler) fulfillReinforcement(c *gin.Context) {
	id, ok := pathID(c, "reinforcement")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "fulfillReinforcement").WithField("id", id)

	var input FulfillReinforcementRequest
	if !h.bind(c, log, &input) {
		return
	}

	request, err := h.services.Reinforcements.FulfillReinforcement(c.Request.Context(), id, input.UnitID, input.ResponsibleUserID, input.Notes)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// @Summary Cancel reinforcement
// @Tags Reinforcements
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Reinforcement ID"
// @Param request body CancelReinforcementRequest true "Cancellation reason"
// @Success 200 {object} models.ReinforcementRequest
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Reinforcement not found"
// @Failure 422 {object} map[string]string "Request is not pending"
// @Router /reinforcements/{id}/cancel [post]
func (h *Handler) cancelReinforcement(c *gin.Context) {
	id, ok := pathID(c, "reinforcement")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "cancelReinforcement").WithField("id", id)

	var input CancelReinforcementRequest
	if !h.bind(c, log, &input) {
		return
	}

	request, err := h.services.Reinforcements.CancelReinforcement(c.Request.Context(), id, input.Reason, input.UserID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
