package repository

import (
	"context"

	"campus-portal-backend/internal/models"
)

// StatusField is the document field a status transition guards on
const StatusField = "status"

// Query selects listings by field equality and orders them by a single time field
type Query struct {
	Filter    map[string]any
	SortField string
	SortDesc  bool
}

// Listings persists one listing variant. Field names in Query, ToggleMember, AddMember and
// TransitionStatus are the camelCase document names (e.g. "interested", "applicants").
type Listings[T models.Listing] interface {
	Create(ctx context.Context, item T) error
	GetByID(ctx context.Context, id string) (T, error)
	Find(ctx context.Context, q Query) ([]T, error)
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	// IncrementViews bumps the counter without running document validation
	IncrementViews(ctx context.Context, id string) error
	// ToggleMember removes userID from field if present, else adds it
	ToggleMember(ctx context.Context, id, field, userID string) (member bool, count int, err error)
	// AddMember adds userID to field, failing with models.ErrAlreadyMember if present
	AddMember(ctx context.Context, id, field, userID string) (count int, err error)
	// TransitionStatus sets status to `to` (and the extra fields in set) only when the
	// current status equals `from`. An empty `from` accepts any current status.
	TransitionStatus(ctx context.Context, id, from, to string, set map[string]any) error
}

// Users is the read side of the user directory
type Users interface {
	GetSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error)
	// ListRecipients returns every user except excludeID
	ListRecipients(ctx context.Context, excludeID string) ([]models.User, error)
}

// Notifications persists per-recipient notification records
type Notifications interface {
	InsertMany(ctx context.Context, items []models.Notification) error
	ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]models.Notification, error)
	// MarkRead flags a notification as read when it belongs to recipient, else models.ErrNotFound
	MarkRead(ctx context.Context, id, recipient string) (*models.Notification, error)
}
