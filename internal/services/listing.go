package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"campus-portal-backend/internal/metrics"
	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository"
	"campus-portal-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Hook runs after a listing is created. Hooks must not fail the request; they log their own errors.
type Hook[T models.Listing] func(ctx context.Context, item T)

// ListingService implements the owned-listing lifecycle for one variant
type ListingService[T models.Listing] struct {
	schema    Schema[T]
	repo      repository.Listings[T]
	users     repository.Users
	images    *ImageResolver
	metrics   *metrics.Metrics
	onCreated []Hook[T]
}

// NewListingService creates a listing service. m may be nil.
func NewListingService[T models.Listing](
	schema Schema[T],
	repo repository.Listings[T],
	users repository.Users,
	images *ImageResolver,
	m *metrics.Metrics,
) *ListingService[T] {
	return &ListingService[T]{
		schema:  schema,
		repo:    repo,
		users:   users,
		images:  images,
		metrics: m,
	}
}

// OnCreated registers a hook that runs after every successful create
func (s *ListingService[T]) OnCreated(h Hook[T]) {
	s.onCreated = append(s.onCreated, h)
}

func (s *ListingService[T]) Schema() Schema[T] {
	return s.schema
}

func (s *ListingService[T]) checkImageCap(n int) error {
	if n > s.schema.ImageCap {
		return models.NewValidationError("images", fmt.Sprintf("at most %d images allowed", s.schema.ImageCap))
	}
	return nil
}

// Create builds a listing from fields, uploads the images and stores it owned by actor
func (s *ListingService[T]) Create(ctx context.Context, actor models.Actor, fields Fields, uploads []storage.File) (T, error) {
	var zero T
	if err := s.checkImageCap(len(uploads)); err != nil {
		return zero, err
	}

	item := s.schema.New()
	if err := s.schema.Apply(fields, item); err != nil {
		return zero, err
	}

	now := time.Now().UTC()
	core := item.Core()
	core.ID = uuid.New().String()
	core.Owner = actor.ID
	core.Views = 0
	core.CreatedAt = now
	core.UpdatedAt = now
	item.Normalize()

	if err := validateListing(item); err != nil {
		return zero, err
	}

	images, err := s.images.Resolve(ctx, string(s.schema.Kind), nil, uploads)
	if err != nil {
		return zero, err
	}
	core.Images = images

	if err := s.repo.Create(ctx, item); err != nil {
		return zero, fmt.Errorf("failed to create %s: %w", s.schema.Kind.Singular(), err)
	}
	s.metrics.ListingMutated(string(s.schema.Kind), "created")

	log.Info().
		Str("kind", string(s.schema.Kind)).
		Str("listing_id", core.ID).
		Str("owner_id", actor.ID).
		Int("images", len(images)).
		Msg("Listing created")

	s.populate(ctx, item)
	for _, h := range s.onCreated {
		h(ctx, item)
	}
	return item, nil
}

// List returns listings matching the variant's query filters, posters populated
func (s *ListingService[T]) List(ctx context.Context, q url.Values) ([]T, error) {
	filter, err := s.schema.Filter(q)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.Find(ctx, repository.Query{
		Filter:    filter,
		SortField: s.schema.SortField,
		SortDesc:  s.schema.SortDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.schema.Kind, err)
	}
	s.populate(ctx, items...)
	return items, nil
}

// Get increments the view counter and returns the listing
func (s *ListingService[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return zero, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	s.populate(ctx, item)
	return item, nil
}

// Update applies fields over the stored listing. existing replaces the kept image list
// when non-nil; nil keeps the current images. New uploads are appended.
func (s *ListingService[T]) Update(ctx context.Context, actor models.Actor, id string, fields Fields, existing []string, uploads []storage.File) (T, error) {
	var zero T
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	core := item.Core()
	if err := Authorize(actor, core.Owner); err != nil {
		return zero, err
	}

	kept := core.Images
	if existing != nil {
		kept = existing
	}
	if err := s.checkImageCap(len(kept) + len(uploads)); err != nil {
		return zero, err
	}

	if err := s.schema.Apply(fields, item); err != nil {
		return zero, err
	}
	item.Normalize()
	if err := validateListing(item); err != nil {
		return zero, err
	}

	images, err := s.images.Resolve(ctx, string(s.schema.Kind), kept, uploads)
	if err != nil {
		return zero, err
	}
	core.Images = images
	core.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, item); err != nil {
		return zero, err
	}
	s.metrics.ListingMutated(string(s.schema.Kind), "updated")

	s.populate(ctx, item)
	return item, nil
}

// Delete hard-deletes the listing when actor is its owner or an admin
func (s *ListingService[T]) Delete(ctx context.Context, actor models.Actor, id string) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, item.Core().Owner); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.ListingMutated(string(s.schema.Kind), "deleted")

	log.Info().
		Str("kind", string(s.schema.Kind)).
		Str("listing_id", id).
		Str("actor_id", actor.ID).
		Msg("Listing deleted")
	return nil
}

// ToggleMember flips actor's membership in the variant's member set and returns the updated listing
func (s *ListingService[T]) ToggleMember(ctx context.Context, actor models.Actor, id string) (T, bool, error) {
	var zero T
	if s.schema.MemberField == "" {
		return zero, false, fmt.Errorf("%s has no member set: %w", s.schema.Kind, models.ErrInvalidState)
	}
	member, count, err := s.repo.ToggleMember(ctx, id, s.schema.MemberField, actor.ID)
	if err != nil {
		return zero, false, err
	}
	log.Debug().Str("listing_id", id).Str("user_id", actor.ID).Bool("member", member).Int("count", count).Msg("Membership toggled")

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, false, err
	}
	s.populate(ctx, item)
	return item, member, nil
}

// AddMember adds actor to the member set once; a repeat fails with models.ErrAlreadyMember
func (s *ListingService[T]) AddMember(ctx context.Context, actor models.Actor, id string) (int, error) {
	if s.schema.MemberField == "" {
		return 0, fmt.Errorf("%s has no member set: %w", s.schema.Kind, models.ErrInvalidState)
	}
	return s.repo.AddMember(ctx, id, s.schema.MemberField, actor.ID)
}

// Claim moves an active listing to claimed and records actor as the claimant
func (s *ListingService[T]) Claim(ctx context.Context, actor models.Actor, id string) (T, error) {
	var zero T
	if len(s.schema.Statuses) == 0 {
		return zero, fmt.Errorf("%s has no status lifecycle: %w", s.schema.Kind, models.ErrInvalidState)
	}
	err := s.repo.TransitionStatus(ctx, id, models.LostFoundActive, models.LostFoundClaimed,
		map[string]any{"claimedBy": actor.ID})
	if err != nil {
		return zero, err
	}
	s.metrics.ListingMutated(string(s.schema.Kind), "claimed")

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	s.populate(ctx, item)
	return item, nil
}

// SetStatus sets any status of the variant's vocabulary; owner or admin only
func (s *ListingService[T]) SetStatus(ctx context.Context, actor models.Actor, id, status string) (T, error) {
	var zero T
	if !s.schema.hasStatus(status) {
		return zero, models.NewValidationError("status", "is not a valid status")
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := Authorize(actor, item.Core().Owner); err != nil {
		return zero, err
	}
	if err := s.repo.TransitionStatus(ctx, id, "", status, nil); err != nil {
		return zero, err
	}
	s.metrics.ListingMutated(string(s.schema.Kind), "status")

	item, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	s.populate(ctx, item)
	return item, nil
}

// populate attaches poster and claimant summaries. Lookup failures leave them empty and are logged.
func (s *ListingService[T]) populate(ctx context.Context, items ...T) {
	if len(items) == 0 {
		return
	}
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, item := range items {
		add(item.Core().Owner)
		if c, ok := any(item).(models.Claimable); ok {
			add(c.ClaimantID())
		}
	}

	summaries, err := s.users.GetSummaries(ctx, ids)
	if err != nil {
		log.Error().Err(err).Str("kind", string(s.schema.Kind)).Msg("Failed to load user summaries")
		return
	}
	for _, item := range items {
		if summary, ok := summaries[item.Core().Owner]; ok {
			item.Core().Poster = &summary
		}
		if c, ok := any(item).(models.Claimable); ok {
			if summary, ok := summaries[c.ClaimantID()]; ok {
				c.SetClaimant(&summary)
			}
		}
	}
}
