package models

import "time"

const (
	LostFoundActive   = "active"
	LostFoundClaimed  = "claimed"
	LostFoundResolved = "resolved"

	LostItem  = "lost"
	FoundItem = "found"
)

// LostFoundItem is a lost or found report; it can be claimed once while active
type LostFoundItem struct {
	Base                `bson:",inline"`
	Title               string     `json:"title" bson:"title" validate:"required"`
	Description         string     `json:"description" bson:"description" validate:"required"`
	Type                string     `json:"type" bson:"type" validate:"required,oneof=lost found"`
	Category            string     `json:"category" bson:"category" validate:"required"`
	Location            string     `json:"location" bson:"location" validate:"required"`
	Date                *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	ContactInfo         string     `json:"contactInfo,omitempty" bson:"contactInfo,omitempty"`
	Color               string     `json:"color,omitempty" bson:"color,omitempty"`
	Brand               string     `json:"brand,omitempty" bson:"brand,omitempty"`
	IdentifyingFeatures string     `json:"identifyingFeatures,omitempty" bson:"identifyingFeatures,omitempty"`
	Status              string     `json:"status" bson:"status" validate:"required,oneof=active claimed resolved"`
	ClaimedBy           string     `json:"claimedBy,omitempty" bson:"claimedBy,omitempty"`

	// Claimant is populated from ClaimedBy on read, never stored
	Claimant *UserSummary `json:"claimant,omitempty" bson:"-"`
}

func (l *LostFoundItem) Kind() Kind { return KindLostFound }

func (l *LostFoundItem) ClaimantID() string { return l.ClaimedBy }

func (l *LostFoundItem) SetClaimant(s *UserSummary) { l.Claimant = s }

func (l *LostFoundItem) Normalize() {
	l.normalize()
}
