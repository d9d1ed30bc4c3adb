package services

import (
	"net/url"
	"strconv"

	"campus-portal-backend/internal/models"
)

func JobSchema() Schema[*models.Job] {
	return Schema[*models.Job]{
		Kind:        models.KindJob,
		ImageCap:    5,
		SortField:   "createdAt",
		SortDesc:    true,
		New:         func() *models.Job { return &models.Job{IsActive: true} },
		Apply:       applyJob,
		Filter:      jobFilter,
		MemberField: "applicants",
	}
}

func applyJob(f Fields, j *models.Job) error {
	r := f.reader()
	r.str("title", &j.Title)
	r.str("company", &j.Company)
	r.str("description", &j.Description)
	r.str("type", &j.Type)
	r.str("location", &j.Location)
	r.str("salary", &j.Salary)
	r.str("duration", &j.Duration)
	r.str("requirements", &j.Requirements)
	r.datePtr("applicationDeadline", &j.ApplicationDeadline)
	r.str("contactEmail", &j.ContactEmail)
	r.str("contactPhone", &j.ContactPhone)
	r.str("applicationLink", &j.ApplicationLink)
	r.stringList("skills", &j.Skills)
	r.boolean("isActive", &j.IsActive)
	return r.err
}

// jobFilter shows active jobs unless isActive=false or isActive=all is asked for
func jobFilter(q url.Values) (map[string]any, error) {
	filter := map[string]any{}
	switch v := q.Get("isActive"); v {
	case "all":
	case "":
		filter["isActive"] = true
	default:
		active, err := strconv.ParseBool(v)
		if err != nil {
			return nil, models.NewValidationError("isActive", "must be true, false or all")
		}
		filter["isActive"] = active
	}
	if v := q.Get("type"); v != "" && v != "all" {
		filter["type"] = v
	}
	return filter, nil
}
