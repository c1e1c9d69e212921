package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/dispatch_orchestrator/internal/models"
)

// @Summary Register a unit
// @Description Register a field unit; plate and call sign are unique. Requires API key.
// @Tags Units
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param unit body RegisterUnitRequest true "Unit registration request"
// @Success 201 {object} UnitResponse
// @Failure 400 {object} map[string]string "Invalid request or duplicate plate"
// @Failure 404 {object} map[string]string "Department not found"
// @Router /units [post]
func (h *Handler) registerUnit(c *gin.Context) {
	var input RegisterUnitRequest
	log := h.logger.WithField("method", "registerUnit")
	if !h.bind(c, log, &input) {
		return
	}

	unit := DTOToUnitModel(input)
	if err := h.services.Units.RegisterUnit(c.Request.Context(), unit); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToUnitResponse(unit))
}

// @Summary Update unit status
// @Description Manually set a unit to available, maintenance or unavailable. Requires API key.
// @Tags Units
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Unit ID"
// @Param request body UpdateUnitStatusRequest true "Target status"
// @Success 200 {object} UnitResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Unit not found"
// @Failure 409 {object} map[string]string "Unit has an active dispatch"
// @Router /units/{id}/status [patch]
func (h *Handler) updateUnitStatus(c *gin.Context) {
	id, ok := pathID(c, "unit")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateUnitStatus").WithField("id", id)

	var input UpdateUnitStatusRequest
	if !h.bind(c, log, &input) {
		return
	}

	unit, err := h.services.Units.UpdateStatus(c.Request.Context(), id, models.UnitStatus(input.Status))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUnitResponse(unit))
}

// @Summary Record a GPS position
// @Description Append a position sample for a unit. Requires API key.
// @Tags Units
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Unit ID"
// @Param request body RecordPositionRequest true "Position sample"
// @Success 201 {object} models.Position
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Unit not found"
// @Router /units/{id}/positions [post]
func (h *Handler) recordPosition(c *gin.Context) {
	id, ok := pathID(c, "unit")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "recordPosition").WithField("id", id)

	var input RecordPositionRequest
	if !h.bind(c, log, &input) {
		return
	}

	position := &models.Position{
		UnitID:    id,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		SpeedKmh:  input.SpeedKmh,
	}
	if input.RecordedAt != nil {
		position.RecordedAt = *input.RecordedAt
	}
	if err := h.services.Units.RecordPosition(c.Request.Context(), position); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, position)
}

// @Summary List units near a point
// @Description List units within a radius ordered by distance. Requires API key.
// @Tags Units
// @Produce json
// @Security ApiKeyAuth
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param radius_km query number false "Search radius in km" default(10)
// @Param available query bool false "Only available units" default(true)
// @Success 200 {array} NearbyUnitResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Router /units/nearby [get]
func (h *Handler) listNearbyUnits(c *gin.Context) {
	log := h.logger.WithField("method", "listNearbyUnits")

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required numbers"})
		return
	}
	radius := h.cfg.DispatchRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius_km"})
			return
		}
		radius = parsed
	}
	onlyAvailable, err := strconv.ParseBool(c.DefaultQuery("available", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid available flag"})
		return
	}

	candidates, err := h.services.Units.ListNearby(c.Request.Context(), lat, lon, radius, onlyAvailable)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, CandidatesToResponses(candidates))
}
