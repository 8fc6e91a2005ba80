package booking

import "github.com/iliyamo/venue-booking/internal/model"

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// RequireUser fails when no user is attached to the actor.
func (a Actor) RequireUser() error {
	if a.UserID == 0 {
		return Unauthorized("You must be logged in.")
	}
	return nil
}

// RequireAdmin fails unless the actor is a logged in admin.
func (a Actor) RequireAdmin() error {
	if err := a.RequireUser(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return Forbidden("Admin access required.")
	}
	return nil
}
