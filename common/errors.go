package common

import (
	"encoding/json"
	"lead-crm-api/config"
	"lead-crm-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AppError is an operational error carrying the HTTP status and a user-safe
// message. The wrapped internal error is logged, never sent to the client
// outside development mode.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error constructors for the auth taxonomy. Login failures share one message
// so the response cannot be used to enumerate accounts.

func ErrInvalidCredentials() *AppError {
	return NewAppError(http.StatusUnauthorized, "Invalid email or password", nil)
}

func ErrRefreshInvalid() *AppError {
	return NewAppError(http.StatusUnauthorized, "Refresh token not found or revoked", nil)
}

func ErrRefreshExpired() *AppError {
	return NewAppError(http.StatusUnauthorized, "Refresh token expired", nil)
}

func ErrAccessTokenRequired() *AppError {
	return NewAppError(http.StatusUnauthorized, "Access token required", nil)
}

func ErrAccessTokenExpired() *AppError {
	return NewAppError(http.StatusUnauthorized, "Access token expired", nil)
}

func ErrInvalidAccessToken() *AppError {
	return NewAppError(http.StatusForbidden, "Invalid access token", nil)
}

func ErrInvalidVerificationToken() *AppError {
	return NewAppError(http.StatusBadRequest, "Invalid or expired verification token", nil)
}

func ErrInvalidResetToken() *AppError {
	return NewAppError(http.StatusBadRequest, "Invalid or expired reset token", nil)
}

func ErrUserAlreadyExists() *AppError {
	return NewAppError(http.StatusConflict, "User already exists with this email", nil)
}

func ErrUserNotFound() *AppError {
	return NewAppError(http.StatusNotFound, "User not found", nil)
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	body := *e
	if e.Err != nil && config.IsDevelopment() {
		body.Detail = e.Err.Error()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(&body)
}
