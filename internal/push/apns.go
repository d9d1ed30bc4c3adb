// Package push delivers notifications to iOS devices through APNs.
package push

import (
	"context"
	"fmt"

	"campus-portal-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

type Config struct {
	KeyFile    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNsClient pushes with a token-based (.p8) provider key
type APNsClient struct {
	client *apns2.Client
	topic  string
}

func NewAPNsClient(cfg Config) (*APNsClient, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsClient{client: client, topic: cfg.Topic}, nil
}

func newNotification(topic, deviceToken string, n models.Notification) *apns2.Notification {
	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       topic,
		CollapseID:  n.Ref.ID,
		Payload: payload.NewPayload().
			AlertTitle(n.Title).
			AlertBody(n.Message).
			Sound("default").
			Custom("link", n.Link).
			Custom("notificationId", n.ID),
	}
}

// Push sends one notification; a response APNs did not accept is an error
func (c *APNsClient) Push(ctx context.Context, deviceToken string, n models.Notification) error {
	res, err := c.client.PushWithContext(ctx, newNotification(c.topic, deviceToken, n))
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}
