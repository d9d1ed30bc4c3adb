package memory

import (
	"context"
	"sync"

	"campus-portal-backend/internal/models"
)

// NotificationStore keeps notifications in insertion order
type NotificationStore struct {
	mu    sync.RWMutex
	items []models.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) InsertMany(ctx context.Context, items []models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	return nil
}

// ListByRecipient returns newest first
func (s *NotificationStore) ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, 0)
	skipped := 0
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		if n.Recipient != recipient {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, recipient string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].Recipient == recipient {
			s.items[i].Read = true
			n := s.items[i]
			return &n, nil
		}
	}
	return nil, models.ErrNotFound
}

// All returns a snapshot of every stored notification
func (s *NotificationStore) All() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}
