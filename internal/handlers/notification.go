package handlers

import (
	"net/http"
	"strconv"

	"campus-portal-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// NotificationHandler serves the caller's notifications
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil {
			offset = parsedOffset
		}
	}

	notifications, err := h.service.ListForUser(r.Context(), actorFrom(r), limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// MarkRead handles PATCH /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkRead(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Notification not found")
		return
	}
	respondJSON(w, http.StatusOK, n)
}
