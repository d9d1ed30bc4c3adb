package services

import (
	"net/url"

	"campus-portal-backend/internal/models"
)

// Schema describes one listing variant to the generic listing service
type Schema[T models.Listing] struct {
	Kind     models.Kind
	ImageCap int
	// SortField orders List results; SortDesc flips it to newest first
	SortField string
	SortDesc  bool
	// New returns a listing carrying the variant's creation defaults
	New func() T
	// Apply merges request fields over item. Create runs it on New(), update on the stored listing.
	Apply func(f Fields, item T) error
	// Filter maps list query parameters to equality filters
	Filter func(q url.Values) (map[string]any, error)
	// MemberField is the set used by ToggleMember / AddMember
	MemberField string
	// Statuses is the accepted vocabulary for SetStatus; empty means no status lifecycle
	Statuses []string
}

func (s Schema[T]) hasStatus(status string) bool {
	for _, st := range s.Statuses {
		if st == status {
			return true
		}
	}
	return false
}
