// Package memory keeps listings, users and notifications in process memory.
// It backs database.driver "memory" and the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository"
)

// ListingStore holds one listing variant as JSON documents
type ListingStore[T models.Listing] struct {
	mu   sync.RWMutex
	docs map[string]repository.Document
	newT func() T
}

// NewListingStore creates an empty store; newT returns a fresh zero value of the variant
func NewListingStore[T models.Listing](newT func() T) *ListingStore[T] {
	return &ListingStore[T]{
		docs: make(map[string]repository.Document),
		newT: newT,
	}
}

func (s *ListingStore[T]) decode(doc repository.Document) (T, error) {
	item := s.newT()
	if err := repository.DecodeDocument(doc, item); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

func (s *ListingStore[T]) Create(ctx context.Context, item T) error {
	doc, err := repository.EncodeDocument(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := item.Core().ID
	if _, ok := s.docs[id]; ok {
		return fmt.Errorf("listing %s already exists", id)
	}
	s.docs[id] = doc
	return nil
}

func (s *ListingStore[T]) GetByID(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		var zero T
		return zero, models.ErrNotFound
	}
	return s.decode(doc)
}

func (s *ListingStore[T]) Find(ctx context.Context, q repository.Query) ([]T, error) {
	filter, err := repository.NormalizeFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]repository.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if doc.Matches(filter) {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	if q.SortField != "" {
		slices.SortStableFunc(matched, func(a, b repository.Document) int {
			c := repository.Compare(a, b, q.SortField)
			if q.SortDesc {
				return -c
			}
			return c
		})
	}

	out := make([]T, 0, len(matched))
	for _, doc := range matched {
		item, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ListingStore[T]) Update(ctx context.Context, item T) error {
	doc, err := repository.EncodeDocument(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := item.Core().ID
	if _, ok := s.docs[id]; !ok {
		return models.ErrNotFound
	}
	s.docs[id] = doc
	return nil
}

func (s *ListingStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// mutate runs fn on a copy of the stored document and keeps the copy only if fn succeeds
func (s *ListingStore[T]) mutate(id string, fn func(doc repository.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return models.ErrNotFound
	}
	working := make(repository.Document, len(doc))
	for k, v := range doc {
		working[k] = v
	}
	if err := fn(working); err != nil {
		return err
	}
	s.docs[id] = working
	return nil
}

func (s *ListingStore[T]) IncrementViews(ctx context.Context, id string) error {
	return s.mutate(id, func(doc repository.Document) error {
		doc.IncrementViews()
		return nil
	})
}

func (s *ListingStore[T]) ToggleMember(ctx context.Context, id, field, userID string) (bool, int, error) {
	var member bool
	var count int
	err := s.mutate(id, func(doc repository.Document) error {
		member, count = doc.Toggle(field, userID)
		return nil
	})
	return member, count, err
}

func (s *ListingStore[T]) AddMember(ctx context.Context, id, field, userID string) (int, error) {
	var count int
	err := s.mutate(id, func(doc repository.Document) error {
		var err error
		count, err = doc.Add(field, userID)
		return err
	})
	return count, err
}

func (s *ListingStore[T]) TransitionStatus(ctx context.Context, id, from, to string, set map[string]any) error {
	return s.mutate(id, func(doc repository.Document) error {
		return doc.Transition(from, to, set)
	})
}
