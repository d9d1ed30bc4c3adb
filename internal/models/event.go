package models

import "time"

// Event is a campus event; the interested set is toggled by users
type Event struct {
	Base            `bson:",inline"`
	Title           string       `json:"title" bson:"title" validate:"required"`
	Description     string       `json:"description" bson:"description" validate:"required"`
	Date            time.Time    `json:"date" bson:"date" validate:"required"`
	Location        string       `json:"location" bson:"location" validate:"required"`
	Capacity        int          `json:"capacity" bson:"capacity" validate:"gte=0"`
	RequiresRSVP    bool         `json:"requiresRSVP" bson:"requiresRSVP"`
	WaitlistEnabled bool         `json:"waitlistEnabled" bson:"waitlistEnabled"`
	Category        string       `json:"category" bson:"category"`
	Coordinates     *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Tags            []string     `json:"tags" bson:"tags"`
	Interested      []string     `json:"interested" bson:"interested"`
}

func (e *Event) Kind() Kind { return KindEvent }

func (e *Event) Normalize() {
	e.normalize()
	e.Tags = emptyIfNil(e.Tags)
	e.Interested = emptyIfNil(e.Interested)
}
