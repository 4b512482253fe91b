package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/repository/sheets"
	"github.com/mamadbah2/stockdesk/internal/service/inventory"
	"github.com/mamadbah2/stockdesk/internal/service/reporting"
)

// statusFor maps service errors onto HTTP status codes. Anything not
// recognized is treated as a failure to reach the backend.
func statusFor(err error) int {
	var backendErr *models.BackendError
	switch {
	case errors.Is(err, inventory.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, inventory.ErrUnrecognizedPayload):
		return http.StatusUnprocessableEntity
	case errors.As(err, &backendErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sheets.ErrReadOnlySource):
		return http.StatusNotImplemented
	case errors.Is(err, reporting.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)

	message := err.Error()
	var backendErr *models.BackendError
	if errors.As(err, &backendErr) {
		message = backendErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Warn(msg, zap.Error(err))
	}

	c.JSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
