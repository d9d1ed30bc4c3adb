package services

import (
	"net/url"

	"campus-portal-backend/internal/models"
)

func HousingSchema() Schema[*models.HousingPost] {
	return Schema[*models.HousingPost]{
		Kind:      models.KindHousing,
		ImageCap:  5,
		SortField: "createdAt",
		SortDesc:  true,
		New:       func() *models.HousingPost { return &models.HousingPost{} },
		Apply:     applyHousing,
		Filter:    housingFilter,
	}
}

func applyHousing(f Fields, h *models.HousingPost) error {
	r := f.reader()
	r.str("postType", &h.PostType)
	r.str("housingType", &h.HousingType)
	r.str("title", &h.Title)
	r.str("location", &h.Location)
	r.str("address", &h.Address)

	// offers carry a rent, requests carry a budget; both land in rent
	if h.PostType == models.HousingAvailable {
		r.number("rent", &h.Rent)
	} else {
		r.number("maxBudget", &h.Rent)
	}

	r.datePtr("availableFrom", &h.AvailableFrom)
	r.integer("totalSeats", &h.TotalSeats)
	r.integer("availableSeats", &h.AvailableSeats)
	r.integer("totalRooms", &h.TotalRooms)
	r.str("genderPreference", &h.GenderPreference)
	r.str("preferredTenant", &h.PreferredTenant)
	r.stringList("facilities", &h.Facilities)
	r.integer("floorNumber", &h.FloorNumber)
	r.str("distanceFromCampus", &h.DistanceFromCampus)
	r.number("advanceDeposit", &h.AdvanceDeposit)
	r.boolean("negotiable", &h.Negotiable)
	r.boolean("utilitiesIncluded", &h.UtilitiesIncluded)
	r.str("description", &h.Description)
	r.str("phone", &h.Phone)
	r.str("preferredContact", &h.PreferredContact)
	return r.err
}

func housingFilter(q url.Values) (map[string]any, error) {
	filter := map[string]any{}
	for _, key := range []string{"postType", "housingType"} {
		if v := q.Get(key); v != "" && v != "all" {
			filter[key] = v
		}
	}
	return filter, nil
}
