package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-portal-backend/internal/middleware"
	"campus-portal-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades realtime connections and handles topic requests
type WebSocketHandler struct {
	hub    *services.WSHub
	tokens middleware.TokenValidator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, tokens middleware.TokenValidator) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tokens: tokens}
}

// HandleWebSocket handles GET /ws. A bearer header (via OptionalAuth) or a valid ?token=
// joins the caller's private topic; without either the connection is anonymous.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	actor, authenticated := middleware.GetActor(r.Context())
	if token := r.URL.Query().Get("token"); !authenticated && token != "" {
		a, err := h.tokens.ValidateJWT(token)
		if err != nil {
			respondError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		actor = a
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := h.hub.Register(actor.ID, conn)
	defer h.hub.Unregister(client)

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", actor.ID).Msg("WebSocket error")
			}
			break
		}

		var msg services.Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Debug().Err(err).Str("user_id", actor.ID).Msg("Failed to parse WebSocket message")
			h.sendError(client, "Invalid message format")
			continue
		}

		if err := h.handleMessage(client, msg); err != nil {
			log.Debug().Err(err).Str("user_id", actor.ID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendError(client, err.Error())
		}
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(c *services.Client, msg services.Message) error {
	switch msg.Type {
	case "subscribe":
		if err := h.hub.Subscribe(c, msg.Topic); err != nil {
			return err
		}
		return c.Send(services.Message{Type: "subscribed", Topic: msg.Topic})
	case "unsubscribe":
		h.hub.Unsubscribe(c, msg.Topic)
		return c.Send(services.Message{Type: "unsubscribed", Topic: msg.Topic})
	case "ping":
		return c.Send(services.Message{Type: "pong"})
	default:
		return errors.New("unknown message type")
	}
}

// sendError sends an error message to the WebSocket connection
func (h *WebSocketHandler) sendError(c *services.Client, message string) {
	if err := c.Send(services.Message{Type: "error", Message: message}); err != nil {
		log.Debug().Err(err).Str("user_id", c.UserID).Msg("Failed to send WebSocket error")
	}
}
