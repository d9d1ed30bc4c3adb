package services

import (
	"context"
	"errors"
	"fmt"

	"campus-portal-backend/internal/metrics"

	"github.com/rs/zerolog/log"
)

const (
	TopicEvents = "events"

	EventUpdate       = "eventUpdate"
	EventNotification = "notification"
)

// UserTopic is the private topic a user's connections join
func UserTopic(userID string) string {
	return "user_" + userID
}

// Message is the realtime envelope pushed to subscribers and mirrored to NATS
type Message struct {
	Event   string `json:"event,omitempty"`
	Type    string `json:"type"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Broadcaster publishes a message on a topic. Delivery is best effort.
type Broadcaster interface {
	Publish(ctx context.Context, topic string, msg Message) error
}

// Sink is a named Broadcaster inside a Fanout
type Sink struct {
	Name string
	Broadcaster
}

// Fanout publishes to every sink and joins their errors
type Fanout struct {
	sinks   []Sink
	metrics *metrics.Metrics
}

func NewFanout(m *metrics.Metrics, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, metrics: m}
}

func (f *Fanout) Publish(ctx context.Context, topic string, msg Message) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Publish(ctx, topic, msg)
		f.metrics.Broadcast(s.Name, err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// PublishLogged publishes and logs a failure instead of returning it
func PublishLogged(ctx context.Context, b Broadcaster, topic string, msg Message) {
	if b == nil {
		return
	}
	if err := b.Publish(ctx, topic, msg); err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("event", msg.Event).Str("type", msg.Type).Msg("Failed to broadcast")
	}
}
