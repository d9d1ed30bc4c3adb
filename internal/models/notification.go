package models

import "time"

const NotificationLostFound = "lost_found"

// Ref is a weak back-reference to the listing a notification is about.
// It is never dereferenced; the target may have been deleted.
type Ref struct {
	Kind Kind   `json:"kind" bson:"kind"`
	ID   string `json:"id" bson:"id"`
}

// Notification is one persisted message for one recipient
type Notification struct {
	ID        string    `json:"id" bson:"_id"`
	Recipient string    `json:"recipient" bson:"recipient"`
	Sender    string    `json:"sender" bson:"sender"`
	Type      string    `json:"type" bson:"type"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	Link      string    `json:"link" bson:"link"`
	Ref       Ref       `json:"ref" bson:"ref"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
