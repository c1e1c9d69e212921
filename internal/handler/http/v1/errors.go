package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/dispatch_orchestrator/internal/service"
	"github.com/sirupsen/logrus"
)

// statusFor сопоставляет доменную ошибку с HTTP-статусом
func statusFor(err error) int {
	var (
		notFound     *service.NotFoundError
		validation   *service.ValidationError
		transition   *service.InvalidTransitionError
		unavailable  *service.UnitUnavailableError
		precondition *service.PreconditionError
		noUnit       *service.NoUnitAvailableError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &noUnit):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &transition), errors.As(err, &unavailable):
		return http.StatusConflict
	case errors.As(err, &precondition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет ответ по ошибке сервиса; внутренние детали наружу не отдаются
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Service call failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	log.WithError(err).Warn("Request rejected by service")
	c.JSON(status, gin.H{"error": err.Error()})
}
