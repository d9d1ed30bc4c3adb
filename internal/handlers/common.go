package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-portal-backend/internal/middleware"
	"campus-portal-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrAlreadyMember):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the mapped status. notFound replaces the message of a 404.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusNotFound && notFound != "" {
		message = notFound
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")

	respondError(w, message, status)
}

// actorFrom returns the authenticated actor; routes behind RequireAuth always carry one
func actorFrom(r *http.Request) models.Actor {
	actor, _ := middleware.GetActor(r.Context())
	return actor
}
