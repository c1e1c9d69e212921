package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check доступен без ключа
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("", APIKeyAuthMiddleware(h.cfg, h.logger))

	// Прием и сопровождение инцидентов
	incidents := protected.Group("/incidents")
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.GET("/:id/history", h.incidentHistory)
		incidents.POST("/:id/attendance", h.startAttendance)
		incidents.POST("/:id/reinforcements", h.requestReinforcement)
	}

	// Центр приема вызовов
	calls := protected.Group("/calls")
	{
		calls.POST("", h.registerCall)
		calls.GET("", h.listCalls)
		calls.GET("/:id", h.getCall)
		calls.POST("/external", h.receiveExternalCall)
		calls.POST("/external/batch", h.receiveExternalBatch)
	}

	dispatches := protected.Group("/dispatches")
	{
		dispatches.POST("", h.createDispatch)
		dispatches.POST("/:id/accept", h.acceptDispatch)
		dispatches.POST("/:id/arrival", h.registerArrival)
		dispatches.POST("/:id/actions", h.registerActions)
		dispatches.POST("/:id/close", h.closeDispatch)
		dispatches.POST("/:id/cancel", h.cancelDispatch)
		dispatches.POST("/:id/finalize", h.finalizeAttendance)
	}

	units := protected.Group("/units")
	{
		units.POST("", h.registerUnit)
		units.GET("/nearby", h.listNearbyUnits)
		units.PATCH("/:id/status", h.updateUnitStatus)
		units.POST("/:id/positions", h.recordPosition)
	}

	reinforcements := protected.Group("/reinforcements")
	{
		reinforcements.GET("/pending", h.listPendingReinforcements)
		reinforcements.GET("/:id", h.getReinforcement)
		reinforcements.POST("/:id/fulfill", h.fulfillReinforcement)
		reinforcements.POST("/:id/cancel", h.cancelReinforcement)
	}
}
