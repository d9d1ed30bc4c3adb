package models

import "time"

// RoleAdmin is the role allowed to delete and moderate any listing
const RoleAdmin = "admin"

// User is the read side of a portal account. Accounts are owned by the auth service.
type User struct {
	ID                string    `json:"id" bson:"_id"`
	Name              string    `json:"name" bson:"name"`
	Email             string    `json:"email" bson:"email"`
	ProfilePicture    string    `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	Department        string    `json:"department,omitempty" bson:"department,omitempty"`
	Batch             string    `json:"batch,omitempty" bson:"batch,omitempty"`
	IsStudentVerified bool      `json:"isStudentVerified" bson:"isStudentVerified"`
	Role              string    `json:"role" bson:"role"`
	PushToken         *string   `json:"-" bson:"pushToken,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
}

// Summary returns the denormalized poster view of the user
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		ProfilePicture:    u.ProfilePicture,
		Department:        u.Department,
		Batch:             u.Batch,
		IsStudentVerified: u.IsStudentVerified,
	}
}

// UserSummary is the poster block embedded in listing responses
type UserSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	ProfilePicture    string `json:"profilePicture,omitempty"`
	Department        string `json:"department,omitempty"`
	Batch             string `json:"batch,omitempty"`
	IsStudentVerified bool   `json:"isStudentVerified"`
}

// Actor is the authenticated identity performing a request
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor carries the administrator role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
