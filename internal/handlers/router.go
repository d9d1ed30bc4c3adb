package handlers

import (
	"net/http"

	"campus-portal-backend/internal/metrics"
	"campus-portal-backend/internal/middleware"
	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps is everything the HTTP surface needs. Metrics and Broadcaster may be nil.
type Deps struct {
	Auth          *services.AuthService
	Events        *services.ListingService[*models.Event]
	Housing       *services.ListingService[*models.HousingPost]
	Jobs          *services.ListingService[*models.Job]
	LostFound     *services.ListingService[*models.LostFoundItem]
	Notifications *services.NotificationService
	Hub           *services.WSHub
	Broadcaster   services.Broadcaster
	Metrics       *metrics.Metrics

	AllowedOrigins []string
	MetricsPath    string
}

// NewRouter builds the chi router: the REST API under /api, realtime on /ws
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(d.AllowedOrigins))
	r.Use(d.Metrics.Middleware)

	requireAuth := middleware.RequireAuth(d.Auth)

	events := EventHandler{NewListingHandler(d.Events, "Event").WithBroadcast(d.Broadcaster, services.TopicEvents)}
	housing := NewListingHandler(d.Housing, "Housing post")
	jobs := JobHandler{NewListingHandler(d.Jobs, "Job")}
	lostFound := LostFoundHandler{NewListingHandler(d.LostFound, "Item")}
	notifications := NewNotificationHandler(d.Notifications)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)

		r.Route("/events", func(r chi.Router) { events.Routes(r, requireAuth) })
		r.Route("/housing", func(r chi.Router) { housing.Routes(r, requireAuth) })
		r.Route("/jobs", func(r chi.Router) { jobs.Routes(r, requireAuth) })
		r.Route("/lost-found", func(r chi.Router) { lostFound.Routes(r, requireAuth) })

		r.Route("/notifications", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", notifications.List)
			r.Patch("/{id}/read", notifications.MarkRead)
		})
	})

	if d.Hub != nil {
		r.With(middleware.OptionalAuth(d.Auth)).Get("/ws", NewWebSocketHandler(d.Hub, d.Auth).HandleWebSocket)
	}
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics.Handler())
	}

	return r
}
