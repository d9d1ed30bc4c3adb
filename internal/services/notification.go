package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campus-portal-backend/internal/metrics"
	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	maxNotificationPreview  = 100
	defaultNotificationPage = 50
	maxNotificationPage     = 200

	// deliveryWorkers bounds concurrent realtime + APNs sends per fan-out
	deliveryWorkers = 8
)

// Pusher delivers a notification to a device
type Pusher interface {
	Push(ctx context.Context, deviceToken string, n models.Notification) error
}

// NotificationService fans listing events out to users and serves their inbox
type NotificationService struct {
	users       repository.Users
	store       repository.Notifications
	broadcaster Broadcaster
	pusher      Pusher
	metrics     *metrics.Metrics
	inflight    sync.WaitGroup
}

// NewNotificationService creates the service. pusher and m may be nil.
func NewNotificationService(
	users repository.Users,
	store repository.Notifications,
	broadcaster Broadcaster,
	pusher Pusher,
	m *metrics.Metrics,
) *NotificationService {
	return &NotificationService{
		users:       users,
		store:       store,
		broadcaster: broadcaster,
		pusher:      pusher,
		metrics:     m,
	}
}

// LostFoundPosted is the create hook for lost-found items. The fan-out runs in the
// background, detached from the request; errors are logged only.
func (s *NotificationService) LostFoundPosted(ctx context.Context, item *models.LostFoundItem) {
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		sent, err := s.FanOutLostFound(ctx, item)
		if err != nil {
			log.Error().Err(err).Str("listing_id", item.ID).Msg("Failed to send lost-found notifications")
			return
		}
		log.Info().Str("listing_id", item.ID).Int("recipients", sent).Msg("Lost-found notifications sent")
	}()
}

// Wait blocks until every background fan-out has finished
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}

// FanOutLostFound stores one notification per user other than the poster, then pushes
// each over the realtime channel and, when the user has a device token, over APNs.
// Only the batch insert can fail the call; delivery failures are logged.
func (s *NotificationService) FanOutLostFound(ctx context.Context, item *models.LostFoundItem) (int, error) {
	recipients, err := s.users.ListRecipients(ctx, item.Owner)
	if err != nil {
		return 0, fmt.Errorf("failed to list recipients: %w", err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	label := "🟢 Found Item"
	if item.Type == models.LostItem {
		label = "🔴 Lost Item"
	}
	now := time.Now().UTC()
	notes := make([]models.Notification, len(recipients))
	for i, u := range recipients {
		notes[i] = models.Notification{
			ID:        uuid.New().String(),
			Recipient: u.ID,
			Sender:    item.Owner,
			Type:      models.NotificationLostFound,
			Title:     fmt.Sprintf("%s: %s", label, item.Title),
			Message:   preview(item.Description),
			Link:      "/lost-found/" + item.ID,
			Ref:       models.Ref{Kind: models.KindLostFound, ID: item.ID},
			CreatedAt: now,
		}
	}

	if err := s.store.InsertMany(ctx, notes); err != nil {
		s.metrics.NotificationSent("store", false)
		return 0, fmt.Errorf("%w: %w", models.ErrUpstream, err)
	}
	s.metrics.NotificationSent("store", true)

	summary := fmt.Sprintf("New %s item: %s", item.Type, item.Title)
	var g errgroup.Group
	g.SetLimit(deliveryWorkers)
	for i, u := range recipients {
		n := notes[i]
		g.Go(func() error {
			PublishLogged(ctx, s.broadcaster, UserTopic(u.ID), Message{
				Event:   EventNotification,
				Type:    models.NotificationLostFound,
				Message: summary,
				Data:    n,
			})
			s.push(ctx, u, n)
			return nil
		})
	}
	_ = g.Wait()
	return len(notes), nil
}

func (s *NotificationService) push(ctx context.Context, u models.User, n models.Notification) {
	if s.pusher == nil || u.PushToken == nil || *u.PushToken == "" {
		return
	}
	err := s.pusher.Push(ctx, *u.PushToken, n)
	s.metrics.NotificationSent("apns", err == nil)
	if err != nil {
		log.Warn().Err(err).Str("user_id", u.ID).Msg("Failed to push notification")
	}
}

// preview truncates to maxNotificationPreview runes and always appends "..."
func preview(s string) string {
	runes := []rune(s)
	if len(runes) > maxNotificationPreview {
		runes = runes[:maxNotificationPreview]
	}
	return string(runes) + "..."
}

// ListForUser returns the recipient's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationPage
	}
	if limit > maxNotificationPage {
		limit = maxNotificationPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByRecipient(ctx, actor.ID, limit, offset)
}

// MarkRead flags one of actor's notifications as read. Someone else's notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id string) (*models.Notification, error) {
	return s.store.MarkRead(ctx, id, actor.ID)
}
