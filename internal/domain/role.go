package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is a conference-scoped capability. The set is closed so that
// authorization checks can switch over it exhaustively.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleSpeaker   Role = "speaker"
	RoleAttendee  Role = "attendee"
)

// Roles lists all valid roles in a stable order.
var Roles = []Role{RoleOrganizer, RoleSpeaker, RoleAttendee}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOrganizer, RoleSpeaker, RoleAttendee:
		return true
	}
	return false
}

// ParseRole converts a wire string into a Role.
// Returns ErrInvalidInput for anything outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// RoleAssignment links a user to one role they hold within a conference.
// A user may hold several roles at once.
type RoleAssignment struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// Actor identifies the user performing an operation. Admin marks the
// platform super-admin, which bypasses conference role checks.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}
