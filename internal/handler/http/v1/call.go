package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
)

// @Summary Register a call
// @Description Register a call received by the call centre operator. Requires API key.
// @Tags Calls
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param call body RegisterCallRequest true "Call registration request"
// @Success 201 {object} models.Call
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /calls [post]
func (h *Handler) registerCall(c *gin.Context) {
	var input RegisterCallRequest
	log := h.logger.WithField("method", "registerCall")
	if !h.bind(c, log, &input) {
		return
	}

	call := DTOToCallModel(input)
	if err := h.services.Calls.RegisterCall(c.Request.Context(), call); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, call)
}

// @Summary Get a list of calls
// @Description Get calls received in the interval, newest first. Requires API key.
// @Tags Calls
// @Produce json
// @Security ApiKeyAuth
// @Param from query string false "Lower bound, RFC3339"
// @Param to query string false "Upper bound, RFC3339"
// @Success 200 {array} models.Call
// @Failure 400 {object} map[string]string "Invalid interval"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /calls [get]
func (h *Handler) listCalls(c *gin.Context) {
	log := h.logger.WithField("method", "listCalls")

	var filter models.CallFilter
	for param, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		value := c.Query(param)
		if value == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			log.WithError(err).Warn("Invalid time bound")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param + ": expected RFC3339"})
			return
		}
		*target = &parsed
	}

	calls, err := h.services.Calls.ListCalls(c.Request.Context(), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, calls)
}

// @Summary Get a call
// @Description Get a call with the incidents registered from it. Requires API key.
// @Tags Calls
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Call ID"
// @Success 200 {object} service.CallDetails
// @Failure 400 {object} map[string]string "Invalid call ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Call not found"
// @Router /calls/{id} [get]
func (h *Handler) getCall(c *gin.Context) {
	log := h.logger.WithField("method", "getCall")
	id, ok := pathID(c, "call")
	if !ok {
		return
	}

	details, err := h.services.Calls.GetCall(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// @Summary Receive an external call
// @Description Register a call forwarded by an external system and run the incident intake for it. Requires API key.
// @Tags Calls
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param call body ExternalCallRequest true "External call"
// @Success 201 {object} ExternalCallResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "External protocol already integrated"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /calls/external [post]
func (h *Handler) receiveExternalCall(c *gin.Context) {
	var input ExternalCallRequest
	log := h.logger.WithField("method", "receiveExternalCall")
	if !h.bind(c, log, &input) {
		return
	}

	result, err := h.services.Calls.ReceiveExternalCall(c.Request.Context(), DTOToExternalCall(input))
	if err != nil && result == nil {
		respondError(c, log, err)
		return
	}
	response := ExternalResultToResponse(result)
	if err != nil {
		log.WithError(err).Warn("External call integrated with incomplete routing")
		response.Intake.Warning = err.Error()
	}
	c.JSON(http.StatusCreated, response)
}

// @Summary Receive a batch of external calls
// @Description Integrate up to 100 external calls one by one; a failed call does not stop the batch. Requires API key.
// @Tags Calls
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param batch body ExternalBatchRequest true "External calls"
// @Success 200 {object} service.ExternalBatchResult
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /calls/external/batch [post]
func (h *Handler) receiveExternalBatch(c *gin.Context) {
	var input ExternalBatchRequest
	log := h.logger.WithField("method", "receiveExternalBatch")
	if !h.bind(c, log, &input) {
		return
	}

	calls := make([]service.ExternalCall, len(input.Calls))
	for i, dto := range input.Calls {
		calls[i] = DTOToExternalCall(dto)
	}
	result, err := h.services.Calls.ReceiveExternalBatch(c.Request.Context(), calls)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
