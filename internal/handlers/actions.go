package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-portal-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

// EventHandler adds the interest toggle to the event routes
type EventHandler struct {
	*ListingHandler[*models.Event]
}

func (h EventHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	h.ListingHandler.Routes(r, requireAuth)
	r.With(requireAuth).Patch("/{id}/interested", h.ToggleInterest)
}

// ToggleInterest handles PATCH /events/{id}/interested
func (h EventHandler) ToggleInterest(w http.ResponseWriter, r *http.Request) {
	event, _, err := h.service.ToggleMember(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, h.notFound())
		return
	}

	h.broadcast(r, "interestUpdated", map[string]any{
		"eventId":         event.ID,
		"interestedCount": len(event.Interested),
		"event":           event,
	})
	respondJSON(w, http.StatusOK, event)
}

// JobHandler adds applications to the job routes
type JobHandler struct {
	*ListingHandler[*models.Job]
}

func (h JobHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	h.ListingHandler.Routes(r, requireAuth)
	r.With(requireAuth).Post("/{id}/apply", h.Apply)
}

// Apply handles POST /jobs/{id}/apply
func (h JobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.AddMember(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrAlreadyMember) {
			respondError(w, "Already applied", http.StatusBadRequest)
			return
		}
		respondServiceError(w, r, err, h.notFound())
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Application submitted"})
}

// LostFoundHandler adds claim and status routes to the lost-and-found routes
type LostFoundHandler struct {
	*ListingHandler[*models.LostFoundItem]
}

func (h LostFoundHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	h.ListingHandler.Routes(r, requireAuth)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/{id}/claim", h.Claim)
		r.Put("/{id}/status", h.SetStatus)
	})
}

// Claim handles POST /lost-found/{id}/claim
func (h LostFoundHandler) Claim(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Claim(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			respondError(w, "Item already claimed or resolved", http.StatusBadRequest)
			return
		}
		respondServiceError(w, r, err, h.notFound())
		return
	}
	respondJSON(w, http.StatusOK, item)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /lost-found/{id}/status
func (h LostFoundHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.service.SetStatus(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, r, err, h.notFound())
		return
	}
	respondJSON(w, http.StatusOK, item)
}
