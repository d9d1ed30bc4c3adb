package models

import "time"

// Kind names a listing variant. The value doubles as the URL segment and the storage collection.
type Kind string

const (
	KindEvent     Kind = "events"
	KindHousing   Kind = "housing"
	KindJob       Kind = "jobs"
	KindLostFound Kind = "lost-found"
)

// Singular returns the name used for payload keys such as "eventId"
func (k Kind) Singular() string {
	switch k {
	case KindEvent:
		return "event"
	case KindHousing:
		return "housing"
	case KindJob:
		return "job"
	case KindLostFound:
		return "lostFound"
	}
	return string(k)
}

// Base holds the fields every owned listing shares
type Base struct {
	ID        string       `json:"id" bson:"_id"`
	Owner     string       `json:"owner" bson:"owner"`
	Poster    *UserSummary `json:"poster,omitempty" bson:"-"`
	Images    []string     `json:"images" bson:"images"`
	Views     int          `json:"views" bson:"views"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Core exposes the shared fields of a listing variant
func (b *Base) Core() *Base {
	return b
}

func (b *Base) normalize() {
	if b.Images == nil {
		b.Images = []string{}
	}
}

// Listing is implemented by every variant pointer type (*Event, *HousingPost, *Job, *LostFoundItem)
type Listing interface {
	Core() *Base
	Kind() Kind
	// Normalize replaces nil collections with empty ones so responses never carry null arrays
	Normalize()
}

// Claimable is implemented by listings that reference a claimant besides the owner
type Claimable interface {
	ClaimantID() string
	SetClaimant(s *UserSummary)
}

// Coordinates is an optional map position
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
