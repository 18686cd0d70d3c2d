package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation, models.KindAlreadyExists:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body for err. Causes of 5xx answers
// are logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Kind == models.KindInternal {
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{
			Message: "internal server error",
			Status:  "error",
		})
		return
	}

	c.AbortWithStatusJSON(statusFor(appErr.Kind), types.ErrorResponse{
		Message: appErr.Message,
		Status:  "error",
		Errors:  appErr.Fields,
	})
}

// bindJSON decodes the body into dst; a malformed body is a validation error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, models.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, types.ErrorResponse{Message: "not found", Status: "error"})
}

// MethodNotAllowed answers routes matched with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, types.ErrorResponse{
		Message: "method \"" + c.Request.Method + "\" not allowed",
		Status:  "error",
	})
}
