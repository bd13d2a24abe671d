package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shiftpay/internal/domain/models"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindInvalidInput:
		return http.StatusBadRequest
	case models.KindPreconditionFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a domain error to its status. Anything that is not a domain
// error is logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := models.KindOf(err)
	status := statusFor(kind)
	code := models.CodeOf(err)

	message := err.Error()
	if code == "internal_error" {
		message = "An unexpected error occurred"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", code), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("code", code), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: message})
}

func respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
}
