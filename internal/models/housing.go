package models

import "time"

const (
	HousingAvailable = "available"
	HousingWanted    = "wanted"
)

// HousingPost either offers a seat/flat or asks for one
type HousingPost struct {
	Base               `bson:",inline"`
	PostType           string     `json:"postType" bson:"postType" validate:"required,oneof=available wanted"`
	HousingType        string     `json:"housingType" bson:"housingType"`
	Title              string     `json:"title" bson:"title" validate:"required"`
	Location           string     `json:"location" bson:"location" validate:"required"`
	Address            string     `json:"address,omitempty" bson:"address,omitempty"`
	Rent               float64    `json:"rent" bson:"rent" validate:"gte=0"`
	AvailableFrom      *time.Time `json:"availableFrom,omitempty" bson:"availableFrom,omitempty"`
	TotalSeats         int        `json:"totalSeats,omitempty" bson:"totalSeats,omitempty"`
	AvailableSeats     int        `json:"availableSeats,omitempty" bson:"availableSeats,omitempty"`
	TotalRooms         int        `json:"totalRooms,omitempty" bson:"totalRooms,omitempty"`
	GenderPreference   string     `json:"genderPreference,omitempty" bson:"genderPreference,omitempty"`
	PreferredTenant    string     `json:"preferredTenant,omitempty" bson:"preferredTenant,omitempty"`
	Facilities         []string   `json:"facilities" bson:"facilities"`
	FloorNumber        int        `json:"floorNumber,omitempty" bson:"floorNumber,omitempty"`
	DistanceFromCampus string     `json:"distanceFromCampus,omitempty" bson:"distanceFromCampus,omitempty"`
	AdvanceDeposit     float64    `json:"advanceDeposit,omitempty" bson:"advanceDeposit,omitempty"`
	Negotiable         bool       `json:"negotiable" bson:"negotiable"`
	UtilitiesIncluded  bool       `json:"utilitiesIncluded" bson:"utilitiesIncluded"`
	Description        string     `json:"description,omitempty" bson:"description,omitempty"`
	Phone              string     `json:"phone,omitempty" bson:"phone,omitempty"`
	PreferredContact   string     `json:"preferredContact,omitempty" bson:"preferredContact,omitempty"`
}

func (h *HousingPost) Kind() Kind { return KindHousing }

func (h *HousingPost) Normalize() {
	h.normalize()
	h.Facilities = emptyIfNil(h.Facilities)
}
