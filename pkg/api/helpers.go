package api

import (
	"encoding/json"
	"net/http"

	pkgerrors "ideamap-canvas/pkg/errors"
)

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends a standardized error response with consistent JSON format.
func Error(w http.ResponseWriter, statusCode int, message string) {
	Success(w, statusCode, ErrorResponse{Error: message})
}

// Fail maps an application error onto a status code and writes it.
func Fail(w http.ResponseWriter, err error) {
	Success(w, StatusFor(err), ErrorResponse{
		Error: err.Error(),
		Code:  pkgerrors.CodeOf(err).String(),
	})
}

// StatusFor returns the HTTP status matching the error's category.
func StatusFor(err error) int {
	switch {
	case pkgerrors.IsValidation(err):
		return http.StatusBadRequest
	case pkgerrors.IsNotFound(err):
		return http.StatusUnprocessableEntity
	case pkgerrors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
