// Package nats mirrors realtime broadcasts onto NATS subjects.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"campus-portal-backend/internal/services"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher implements services.Broadcaster on subject "<prefix>.<topic>"
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

func NewPublisher(url, prefix, appName string) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(appName),
		nats.Timeout(10 * time.Second),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info().Str("url", conn.ConnectedUrl()).Msg("NATS connection established")

	return &Publisher{conn: conn, prefix: strings.Trim(prefix, ".")}, nil
}

// Subject maps a realtime topic to its NATS subject
func (p *Publisher) Subject(topic string) string {
	if p.prefix == "" {
		return topic
	}
	return p.prefix + "." + topic
}

func (p *Publisher) Publish(ctx context.Context, topic string, msg services.Message) error {
	msg.Topic = topic
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message for topic %s: %w", topic, err)
	}

	subject := p.Subject(topic)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}
	log.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("NATS message published")
	return nil
}

// Close drains pending messages and closes the connection
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("NATS drain failed")
		p.conn.Close()
	}
}
