package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"patroltrack/internal/logger"
	"patroltrack/internal/middleware"
	appErrors "patroltrack/pkg/errors"
	"patroltrack/pkg/utils"
)

// statusForCode maps application error codes to HTTP statuses. Conflict codes
// describe requests that were well formed but lost to the current state.
var statusForCode = map[string]int{
	"VALIDATION_ERROR":      http.StatusBadRequest,
	"INVALID_INCIDENT_DATA": http.StatusBadRequest,
	"INVALID_STATUS":        http.StatusBadRequest,
	"WEAK_PASSWORD":         http.StatusBadRequest,

	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,

	"USER_NOT_VERIFIED": http.StatusForbidden,

	"INCIDENT_NOT_FOUND": http.StatusNotFound,
	"USER_NOT_FOUND":     http.StatusNotFound,

	"INVALID_TRANSITION":  http.StatusConflict,
	"ALREADY_RESOLVED":    http.StatusConflict,
	"TANOD_NOT_AVAILABLE": http.StatusConflict,
	"DUPLICATE_TIME_IN":   http.StatusConflict,
	"MISSING_TIME_IN":     http.StatusConflict,
	"DUPLICATE_TIME_OUT":  http.StatusConflict,
	"USER_EXISTS":         http.StatusConflict,

	"STORAGE_UNAVAILABLE": http.StatusServiceUnavailable,
}

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		status, ok := statusForCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		utils.ErrorResponseWithCode(c, status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErrors.ErrInsufficientPermissions):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErrors.ErrUserNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		requestID := middleware.GetRequestID(c)
		logger.Error("Internal server error",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Invalid user identifier")
		return uuid.Nil, false
	}

	return id, true
}

// currentUsername pulls the authenticated username set by the auth middleware.
func currentUsername(c *gin.Context) (string, bool) {
	val, exists := c.Get("username")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return "", false
	}

	username, ok := val.(string)
	if !ok || username == "" {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Invalid username in context")
		return "", false
	}

	return username, true
}
