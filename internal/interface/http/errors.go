package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/interface/metrics"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
	"github.com/oksasatya/crm-accounts/pkg/response"
	"github.com/oksasatya/crm-accounts/pkg/validation"
)

// resolveError maps a use-case error to its HTTP status, error code and message.
func resolveError(err error) (int, string, string, any) {
	var verr *application.ValidationError
	var ferr *application.ForbiddenError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_error", "invalid payload", verr.Fields
	case errors.Is(err, application.ErrSelfActionForbidden):
		return http.StatusForbidden, "self_action_forbidden", err.Error(), nil
	case errors.As(err, &ferr):
		return http.StatusForbidden, "forbidden", ferr.Reason, gin.H{"action": ferr.Action}
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, "not_found", err.Error(), nil
	case errors.Is(err, application.ErrDuplicateEmail):
		return http.StatusConflict, "duplicate_email", err.Error(), gin.H{"email": "already in use"}
	case errors.Is(err, application.ErrConflict):
		return http.StatusConflict, "conflict", err.Error(), nil
	case errors.Is(err, application.ErrWrongPassword):
		return http.StatusUnauthorized, "wrong_password", err.Error(), gin.H{"old_password": "is incorrect"}
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", err.Error(), nil
	case errors.Is(err, application.ErrInactiveAccount):
		return http.StatusUnauthorized, "inactive_account", err.Error(), nil
	case errors.Is(err, application.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error(), nil
	}
	return http.StatusInternalServerError, "internal_error", "internal server error", nil
}

// writeError responds with the mapped error and counts the outcome under op.
// Unmapped errors are logged and never leaked to the client.
func writeError(c *gin.Context, logger logrus.FieldLogger, op string, err error) {
	status, code, msg, details := resolveError(err)
	if status == http.StatusInternalServerError && logger != nil {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"op":         op,
			"request_id": c.GetString("request_id"),
		})
	}
	if op != "" {
		metrics.AccountOperationsTotal.WithLabelValues(op, code).Inc()
	}
	response.Abort(c, status, code, msg, details)
}

// bindError responds 400 for payloads gin could not bind.
func bindError(c *gin.Context, err error) {
	response.Abort(c, http.StatusBadRequest, "validation_error", "invalid payload", validation.ToDetails(err))
}

func ok[T any](c *gin.Context, status int, data T, message string, meta any) {
	c.JSON(status, response.Success(c, status, data, message, meta))
}

func succeeded(op string) {
	metrics.AccountOperationsTotal.WithLabelValues(op, "ok").Inc()
}
