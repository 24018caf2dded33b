package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tutorkit/tutorkit/internal/storage"
	"github.com/tutorkit/tutorkit/internal/tutor"
	"github.com/tutorkit/tutorkit/internal/workspace"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodePathTraversal  = "PATH_TRAVERSAL"
	ErrCodeLineRange      = "LINE_RANGE"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeSuccess writes a success response.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeDomainError maps domain errors onto status codes: traversal and range
// violations are client errors, missing entities are 404, the rest is 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workspace.ErrPathTraversal):
		writeError(w, http.StatusBadRequest, ErrCodePathTraversal, err.Error())
	case errors.Is(err, workspace.ErrLineRange):
		writeError(w, http.StatusBadRequest, ErrCodeLineRange, err.Error())
	case errors.Is(err, workspace.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, tutor.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
	}
}
