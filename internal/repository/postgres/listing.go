package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sortable lists the document fields Find may order by
var sortable = map[string]bool{"createdAt": true, "updatedAt": true, "date": true}

// ListingRepository handles database operations for one listing kind
type ListingRepository[T models.Listing] struct {
	db   *pgxpool.Pool
	kind models.Kind
	newT func() T
}

// NewListingRepository creates a repository scoped to kind
func NewListingRepository[T models.Listing](db *pgxpool.Pool, kind models.Kind, newT func() T) *ListingRepository[T] {
	return &ListingRepository[T]{db: db, kind: kind, newT: newT}
}

func (r *ListingRepository[T]) encode(item T) ([]byte, error) {
	doc, err := repository.EncodeDocument(item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (r *ListingRepository[T]) decode(raw []byte) (T, error) {
	item := r.newT()
	if err := json.Unmarshal(raw, item); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode listing: %w", err)
	}
	return item, nil
}

// Create creates a new listing
func (r *ListingRepository[T]) Create(ctx context.Context, item T) error {
	raw, err := r.encode(item)
	if err != nil {
		return err
	}
	core := item.Core()
	query := `
		INSERT INTO listings (id, kind, owner_id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query, core.ID, string(r.kind), core.Owner, raw, core.CreatedAt, core.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s listing: %w", r.kind, err)
	}
	return nil
}

// GetByID retrieves a listing by ID
func (r *ListingRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM listings WHERE id = $1 AND kind = $2`, id, string(r.kind)).Scan(&raw)
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
		}
		return zero, fmt.Errorf("failed to get listing: %w", err)
	}
	return r.decode(raw)
}

// Find returns listings whose document contains every filter pair
func (r *ListingRepository[T]) Find(ctx context.Context, q repository.Query) ([]T, error) {
	filter, err := json.Marshal(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	if q.Filter == nil {
		filter = []byte("{}")
	}

	query := `SELECT doc FROM listings WHERE kind = $1 AND doc @> $2::jsonb`
	args := []any{string(r.kind), filter}
	if q.SortField != "" {
		if !sortable[q.SortField] {
			return nil, fmt.Errorf("unsupported sort field %q", q.SortField)
		}
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		query += fmt.Sprintf(` ORDER BY (doc->>$3)::timestamptz %s`, dir)
		args = append(args, q.SortField)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		item, err := r.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	return out, nil
}

// Update replaces the stored document
func (r *ListingRepository[T]) Update(ctx context.Context, item T) error {
	raw, err := r.encode(item)
	if err != nil {
		return err
	}
	core := item.Core()
	tag, err := r.db.Exec(ctx,
		`UPDATE listings SET doc = $1, updated_at = $2 WHERE id = $3 AND kind = $4`,
		raw, core.UpdatedAt, core.ID, string(r.kind))
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", core.ID, models.ErrNotFound)
	}
	return nil
}

// Delete hard-deletes a listing
func (r *ListingRepository[T]) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1 AND kind = $2`, id, string(r.kind))
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// IncrementViews bumps doc.views in place
func (r *ListingRepository[T]) IncrementViews(ctx context.Context, id string) error {
	query := `
		UPDATE listings
		SET doc = jsonb_set(doc, '{views}', to_jsonb(COALESCE((doc->>'views')::int, 0) + 1))
		WHERE id = $1 AND kind = $2
	`
	tag, err := r.db.Exec(ctx, query, id, string(r.kind))
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// mutate loads the document under a row lock, applies fn and writes it back in one transaction
func (r *ListingRepository[T]) mutate(ctx context.Context, id string, fn func(doc repository.Document) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM listings WHERE id = $1 AND kind = $2 FOR UPDATE`, id, string(r.kind)).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("listing %s: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("failed to lock listing: %w", err)
	}

	var doc repository.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode listing: %w", err)
	}
	if err := fn(doc); err != nil {
		return err
	}

	raw, err = json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE listings SET doc = $1, updated_at = now() WHERE id = $2`, raw, id); err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *ListingRepository[T]) ToggleMember(ctx context.Context, id, field, userID string) (bool, int, error) {
	var member bool
	var count int
	err := r.mutate(ctx, id, func(doc repository.Document) error {
		member, count = doc.Toggle(field, userID)
		return nil
	})
	return member, count, err
}

func (r *ListingRepository[T]) AddMember(ctx context.Context, id, field, userID string) (int, error) {
	var count int
	err := r.mutate(ctx, id, func(doc repository.Document) error {
		var err error
		count, err = doc.Add(field, userID)
		return err
	})
	return count, err
}

func (r *ListingRepository[T]) TransitionStatus(ctx context.Context, id, from, to string, set map[string]any) error {
	return r.mutate(ctx, id, func(doc repository.Document) error {
		return doc.Transition(from, to, set)
	})
}
