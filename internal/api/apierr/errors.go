package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/rajamantri/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeRoleNotFound     = "ROLE_NOT_FOUND"
	CodeInvalidRoomState = "INVALID_ROOM_STATE"
	CodeNotMantri        = "NOT_MANTRI"
	CodeNotInRoom        = "NOT_IN_ROOM"
	CodeAlreadySubmitted = "ALREADY_SUBMITTED"
	CodeInvalidTarget    = "INVALID_TARGET"
	CodeRoomFull         = "ROOM_FULL"
	CodeAlreadyInRoom    = "ALREADY_IN_ROOM"
	CodeStorageError     = "STORAGE_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status an error is reported with
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Errors with a dedicated code
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, err.Error()}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, err.Error()}}
	case errors.Is(err, model.ErrRoleNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoleNotFound, err.Error()}}
	case errors.Is(err, model.ErrNotMantri):
		return &httpError{http.StatusForbidden, APIError{CodeNotMantri, err.Error()}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusForbidden, APIError{CodeNotInRoom, err.Error()}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, err.Error()}}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInRoom, err.Error()}}
	}

	// Everything else by kind
	switch model.KindOf(err) {
	case model.KindNotFound:
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}
	case model.KindInvalidRoomState:
		return &httpError{http.StatusConflict, APIError{CodeInvalidRoomState, err.Error()}}
	case model.KindAlreadySubmitted:
		return &httpError{http.StatusConflict, APIError{CodeAlreadySubmitted, err.Error()}}
	case model.KindInvalidTarget:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTarget, err.Error()}}
	case model.KindValidation:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case model.KindRepository:
		return &httpError{http.StatusInternalServerError, APIError{CodeStorageError, "Storage unavailable"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
