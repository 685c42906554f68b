package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared/errs"
)

// Response is the JSON envelope shared by every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success writes a successful envelope.
func Success(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail writes a failed envelope with an explicit status and message.
func Fail(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// Error classifies err and writes the matching status with a user-safe message.
// Persistence and external failures are logged with their full chain here.
func Error(c *gin.Context, err error) {
	status, code := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	Fail(c, status, code, errs.Message(err))
}

// StatusOf maps an error kind to an HTTP status and a stable error code.
func StatusOf(err error) (int, string) {
	switch kind := errs.Kind(err); {
	case errors.Is(kind, errs.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(kind, errs.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(kind, errs.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(kind, errs.ErrConfiguration):
		return http.StatusServiceUnavailable, "NOT_CONFIGURED"
	case errors.Is(kind, errs.ErrRecommendation):
		return http.StatusBadGateway, "RECOMMENDATION_ERROR"
	case errors.Is(kind, errs.ErrPersistence):
		return http.StatusInternalServerError, "PERSISTENCE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, "NOT_FOUND", message)
}

func TooManyRequests(c *gin.Context, message string) {
	Fail(c, http.StatusTooManyRequests, "RATE_LIMITED", message)
}

func InternalServerError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}
