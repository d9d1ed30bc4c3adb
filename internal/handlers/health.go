package handlers

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Message: "Backend running", Timestamp: time.Now().UTC()})
}
