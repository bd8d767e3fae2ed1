package response

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/pkg/apperror"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta contains pagination and other metadata
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// JSONWithMeta sends a JSON response with pagination metadata
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// Err translates a service error into an error response.
// Unclassified errors are logged and reported as 500 without their cause.
func Err(w http.ResponseWriter, log *zap.Logger, err error) {
	appErr, ok := apperror.As(err)
	if !ok || statusFor(appErr.Kind) == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		InternalError(w, "Internal server error")
		return
	}

	write(w, statusFor(appErr.Kind), APIResponse{
		Success: false,
		Error: &APIError{
			Code:    string(appErr.Kind),
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidOrExpired, apperror.KindValidation, apperror.KindRegistrationRequired:
		return http.StatusBadRequest
	case apperror.KindUnauthorized, apperror.KindLoginRequired:
		return http.StatusUnauthorized
	case apperror.KindForbidden, apperror.KindEmailMismatch:
		return http.StatusForbidden
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(body)
}

// Common error responses
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
