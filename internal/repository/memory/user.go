package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"campus-portal-backend/internal/models"
)

// UserStore is an in-memory user directory
type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserStore(users ...models.User) *UserStore {
	s := &UserStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

// Put inserts or replaces a user
func (s *UserStore) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *UserStore) GetSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (s *UserStore) ListRecipients(ctx context.Context, excludeID string) ([]models.User, error) {
	s.mu.RLock()
	out := make([]models.User, 0, len(s.users))
	for id, u := range s.users {
		if id != excludeID {
			out = append(out, u)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}
