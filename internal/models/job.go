package models

import "time"

// Job is a job or internship post; applicants only ever grows
type Job struct {
	Base                `bson:",inline"`
	Title               string     `json:"title" bson:"title" validate:"required"`
	Company             string     `json:"company" bson:"company" validate:"required"`
	Description         string     `json:"description" bson:"description" validate:"required"`
	Type                string     `json:"type,omitempty" bson:"type,omitempty"`
	Location            string     `json:"location,omitempty" bson:"location,omitempty"`
	Salary              string     `json:"salary,omitempty" bson:"salary,omitempty"`
	Duration            string     `json:"duration,omitempty" bson:"duration,omitempty"`
	Requirements        string     `json:"requirements,omitempty" bson:"requirements,omitempty"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty" bson:"applicationDeadline,omitempty"`
	ContactEmail        string     `json:"contactEmail,omitempty" bson:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone        string     `json:"contactPhone,omitempty" bson:"contactPhone,omitempty"`
	ApplicationLink     string     `json:"applicationLink,omitempty" bson:"applicationLink,omitempty" validate:"omitempty,url"`
	Skills              []string   `json:"skills" bson:"skills"`
	Applicants          []string   `json:"applicants" bson:"applicants"`
	IsActive            bool       `json:"isActive" bson:"isActive"`
}

func (j *Job) Kind() Kind { return KindJob }

func (j *Job) Normalize() {
	j.normalize()
	j.Skills = emptyIfNil(j.Skills)
	j.Applicants = emptyIfNil(j.Applicants)
}
