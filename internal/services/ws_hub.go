package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"campus-portal-backend/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

var ErrPrivateTopic = errors.New("cannot subscribe to another user's topic")

// Client is one websocket connection. UserID is empty for anonymous connections.
type Client struct {
	UserID string
	conn   *websocket.Conn
	// writes to a gorilla connection must be serialized
	writeMu sync.Mutex
	topics  map[string]bool
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Send writes one message to this connection only
func (c *Client) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.write(data)
}

// WSHub manages WebSocket connections and their topic subscriptions
type WSHub struct {
	mu            sync.RWMutex
	topics        map[string]map[*Client]struct{}
	clients       map[*Client]struct{}
	defaultTopics []string
	metrics       *metrics.Metrics
}

// NewWSHub creates a hub; every new connection joins defaultTopics
func NewWSHub(m *metrics.Metrics, defaultTopics ...string) *WSHub {
	return &WSHub{
		topics:        make(map[string]map[*Client]struct{}),
		clients:       make(map[*Client]struct{}),
		defaultTopics: defaultTopics,
		metrics:       m,
	}
}

// Register adds a connection, joining the default topics and the user's private topic
func (h *WSHub) Register(userID string, conn *websocket.Conn) *Client {
	c := &Client{UserID: userID, conn: conn, topics: make(map[string]bool)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	for _, t := range h.defaultTopics {
		h.subscribeLocked(c, t)
	}
	if userID != "" {
		h.subscribeLocked(c, UserTopic(userID))
	}
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
	return c
}

// Unregister removes a connection from every topic and closes it
func (h *WSHub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for t := range c.topics {
		h.unsubscribeLocked(c, t)
	}
	h.mu.Unlock()

	c.conn.Close()
	h.metrics.ConnectionClosed()
	log.Info().Str("user_id", c.UserID).Msg("WebSocket connection unregistered")
}

// Subscribe joins topic; private user topics are only open to their owner
func (h *WSHub) Subscribe(c *Client, topic string) error {
	if topic == "" {
		return errors.New("topic required")
	}
	if strings.HasPrefix(topic, "user_") && (c.UserID == "" || topic != UserTopic(c.UserID)) {
		return ErrPrivateTopic
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribeLocked(c, topic)
	return nil
}

func (h *WSHub) Unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, topic)
}

func (h *WSHub) subscribeLocked(c *Client, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	c.topics[topic] = true
}

func (h *WSHub) unsubscribeLocked(c *Client, topic string) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.topics, topic)
}

// Publish writes msg to every subscriber of topic. Connections that fail a write are dropped.
func (h *WSHub) Publish(ctx context.Context, topic string, msg Message) error {
	msg.Topic = topic
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	subs := make([]*Client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	for _, c := range subs {
		if err := c.write(data); err != nil {
			log.Warn().Err(err).Str("user_id", c.UserID).Str("topic", topic).Msg("Failed to send message, dropping connection")
			h.Unregister(c)
		}
	}
	return nil
}

// Close drops every connection
func (h *WSHub) Close() {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.Unregister(c)
	}
}
