package services

import (
	"net/url"

	"campus-portal-backend/internal/models"
)

func LostFoundSchema() Schema[*models.LostFoundItem] {
	return Schema[*models.LostFoundItem]{
		Kind:      models.KindLostFound,
		ImageCap:  3,
		SortField: "createdAt",
		SortDesc:  true,
		New:       func() *models.LostFoundItem { return &models.LostFoundItem{Status: models.LostFoundActive} },
		Apply:     applyLostFound,
		Filter:    lostFoundFilter,
		Statuses:  []string{models.LostFoundActive, models.LostFoundClaimed, models.LostFoundResolved},
	}
}

func applyLostFound(f Fields, l *models.LostFoundItem) error {
	r := f.reader()
	r.str("title", &l.Title)
	r.str("description", &l.Description)
	r.str("type", &l.Type)
	r.str("category", &l.Category)
	r.str("location", &l.Location)
	r.datePtr("date", &l.Date)
	r.str("contactInfo", &l.ContactInfo)
	r.str("color", &l.Color)
	r.str("brand", &l.Brand)
	r.str("identifyingFeatures", &l.IdentifyingFeatures)
	return r.err
}

// lostFoundFilter defaults to active items; "all" drops a filter
func lostFoundFilter(q url.Values) (map[string]any, error) {
	filter := map[string]any{}
	for _, key := range []string{"type", "category"} {
		if v := q.Get(key); v != "" && v != "all" {
			filter[key] = v
		}
	}
	switch v := q.Get("status"); v {
	case "all":
	case "":
		filter["status"] = models.LostFoundActive
	default:
		filter["status"] = v
	}
	return filter, nil
}
