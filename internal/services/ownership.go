package services

import (
	"fmt"

	"campus-portal-backend/internal/models"
)

// Authorize allows the owner of a listing or an administrator
func Authorize(actor models.Actor, ownerID string) error {
	if actor.ID != "" && actor.ID == ownerID {
		return nil
	}
	if actor.IsAdmin() {
		return nil
	}
	return fmt.Errorf("user %s on listing owned by %s: %w", actor.ID, ownerID, models.ErrForbidden)
}
