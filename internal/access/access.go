// Package access is the single role gate every route and service goes through.
package access

import (
	"training_tracker/internal/model"
	"training_tracker/internal/util"
)

// Level is the minimum standing an operation requires.
type Level int

const (
	Authenticated Level = iota
	Admin
)

func (l Level) String() string {
	if l == Admin {
		return "admin"
	}
	return "authenticated"
}

// Caller is the identity an operation runs on behalf of.
type Caller struct {
	ID   string
	Role model.UserRole
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

// FromClaims builds a Caller from verified token claims; nil claims give a nil Caller.
func FromClaims(claims *util.Claims) *Caller {
	if claims == nil || claims.UserID == "" {
		return nil
	}
	return &Caller{ID: claims.UserID, Role: claims.Role}
}

// Check classifies the caller as unauthenticated, authenticated or admin and
// rejects it when below level.
func Check(caller *Caller, level Level) error {
	if caller == nil {
		return util.ErrUnauthorized
	}
	if level == Admin && !caller.IsAdmin() {
		return util.ErrForbidden
	}
	return nil
}

// CheckSelfOrAdmin allows admins everywhere and everyone else only on their own data.
func CheckSelfOrAdmin(caller *Caller, userID string) error {
	if err := Check(caller, Authenticated); err != nil {
		return err
	}
	if caller.IsAdmin() || caller.ID == userID {
		return nil
	}
	return util.ErrForbidden
}
