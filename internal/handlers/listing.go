package handlers

import (
	"net/http"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ListingHandler serves the shared CRUD routes of one listing variant
type ListingHandler[T models.Listing] struct {
	service *services.ListingService[T]
	// label names the variant in response messages, e.g. "Event"
	label       string
	broadcaster services.Broadcaster
	topic       string
}

// NewListingHandler creates a listing handler
func NewListingHandler[T models.Listing](service *services.ListingService[T], label string) *ListingHandler[T] {
	return &ListingHandler[T]{service: service, label: label}
}

// WithBroadcast publishes create, update and delete on topic
func (h *ListingHandler[T]) WithBroadcast(b services.Broadcaster, topic string) *ListingHandler[T] {
	h.broadcaster = b
	h.topic = topic
	return h
}

// Routes mounts the CRUD routes on r. Reads are public.
func (h *ListingHandler[T]) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *ListingHandler[T]) notFound() string {
	return h.label + " not found"
}

func (h *ListingHandler[T]) idKey() string {
	return h.service.Schema().Kind.Singular() + "Id"
}

func (h *ListingHandler[T]) broadcast(r *http.Request, typ string, data any) {
	if h.topic == "" {
		return
	}
	services.PublishLogged(r.Context(), h.broadcaster, h.topic, services.Message{
		Event: services.EventUpdate,
		Type:  typ,
		Data:  data,
	})
}

// Create handles POST /
func (h *ListingHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	form, err := parseListingForm(w, r)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}

	item, err := h.service.Create(r.Context(), actorFrom(r), form.fields, form.uploads)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}

	h.broadcast(r, "created", item)
	respondJSON(w, http.StatusCreated, item)
}

// List handles GET /
func (h *ListingHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Get handles GET /{id}
func (h *ListingHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, h.notFound())
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Update handles PUT /{id}
func (h *ListingHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	form, err := parseListingForm(w, r)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}

	item, err := h.service.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), form.fields, form.existing, form.uploads)
	if err != nil {
		respondServiceError(w, r, err, h.notFound())
		return
	}

	h.broadcast(r, "updated", item)
	respondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /{id}
func (h *ListingHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), actorFrom(r), id); err != nil {
		respondServiceError(w, r, err, h.notFound())
		return
	}

	h.broadcast(r, "deleted", map[string]string{h.idKey(): id})
	respondJSON(w, http.StatusOK, MessageResponse{Message: h.label + " deleted successfully"})
}
