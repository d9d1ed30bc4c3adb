package services

import (
	"net/url"

	"campus-portal-backend/internal/models"
)

// EventSchema sorts upcoming events first and toggles the interested set
func EventSchema() Schema[*models.Event] {
	return Schema[*models.Event]{
		Kind:        models.KindEvent,
		ImageCap:    5,
		SortField:   "date",
		New:         func() *models.Event { return &models.Event{Category: "other"} },
		Apply:       applyEvent,
		Filter:      func(url.Values) (map[string]any, error) { return nil, nil },
		MemberField: "interested",
	}
}

func applyEvent(f Fields, e *models.Event) error {
	r := f.reader()
	r.str("title", &e.Title)
	r.str("description", &e.Description)
	r.date("date", &e.Date)
	r.str("location", &e.Location)
	r.integer("capacity", &e.Capacity)
	r.boolean("requiresRSVP", &e.RequiresRSVP)
	r.boolean("waitlistEnabled", &e.WaitlistEnabled)
	r.str("category", &e.Category)
	r.stringList("tags", &e.Tags)

	var c models.Coordinates
	if r.lenientJSON("coordinates", &c) {
		e.Coordinates = &c
	}
	return r.err
}
