// Package handlers wires HTTP endpoints to the service layer.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
)

// ApiResponse is the uniform envelope for non-query endpoints.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error envelope with the status mapped from
// the error's kind.
func ErrorResponse(w http.ResponseWriter, err error) error {
	return WriteJSON(w, apperrors.HTTPStatus(err), map[string]any{
		"success": false,
		"error":   string(apperrors.KindOf(err)),
		"message": apperrors.Message(err),
	})
}
