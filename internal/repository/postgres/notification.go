package postgres

import (
	"context"
	"errors"
	"fmt"

	"campus-portal-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, recipient_id, sender_id, type, title, message, link, ref_kind, ref_id, read, created_at`

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanNotification(row pgx.Row) (models.Notification, error) {
	var n models.Notification
	var kind string
	err := row.Scan(&n.ID, &n.Recipient, &n.Sender, &n.Type, &n.Title, &n.Message,
		&n.Link, &kind, &n.Ref.ID, &n.Read, &n.CreatedAt)
	n.Ref.Kind = models.Kind(kind)
	return n, err
}

// InsertMany writes the batch with COPY
func (r *NotificationRepository) InsertMany(ctx context.Context, items []models.Notification) error {
	if len(items) == 0 {
		return nil
	}
	columns := []string{"id", "recipient_id", "sender_id", "type", "title", "message", "link", "ref_kind", "ref_id", "read", "created_at"}
	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"notifications"}, columns,
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			n := items[i]
			return []any{n.ID, n.Recipient, n.Sender, n.Type, n.Title, n.Message,
				n.Link, string(n.Ref.Kind), n.Ref.ID, n.Read, n.CreatedAt}, nil
		}))
	if err != nil {
		return fmt.Errorf("failed to insert notifications: %w", err)
	}
	return nil
}

// ListByRecipient returns newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, recipient, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipient string) (*models.Notification, error) {
	query := `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING ` + notificationColumns
	n, err := scanNotification(r.db.QueryRow(ctx, query, id, recipient))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return &n, nil
}
