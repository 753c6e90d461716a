// Package convention implements the conference core: role membership, room
// and event registries, and the orchestrator that enforces cross-entity
// invariants. All state lives in memory; operations never perform I/O, and
// every mutation either fully commits or leaves the state untouched.
package convention

import (
	"sort"

	"github.com/google/uuid"

	"conventionhub/internal/domain"
)

// RoleRegistry tracks which users hold which roles within one conference.
// A user may hold several roles at once; a user belongs to the conference
// iff they hold at least one. The registry is not safe for concurrent use
// on its own; the owning Conference serializes access.
type RoleRegistry struct {
	sets map[domain.Role]map[uuid.UUID]struct{}
}

func newRoleRegistry() *RoleRegistry {
	sets := make(map[domain.Role]map[uuid.UUID]struct{}, len(domain.Roles))
	for _, role := range domain.Roles {
		sets[role] = make(map[uuid.UUID]struct{})
	}
	return &RoleRegistry{sets: sets}
}

// HasRole reports whether user holds role.
func (r *RoleRegistry) HasRole(user uuid.UUID, role domain.Role) bool {
	_, ok := r.sets[role][user]
	return ok
}

// IsMember reports whether user holds any role.
func (r *RoleRegistry) IsMember(user uuid.UUID) bool {
	for _, set := range r.sets {
		if _, ok := set[user]; ok {
			return true
		}
	}
	return false
}

// Grant gives user the role. Granting an already-held role is a no-op.
func (r *RoleRegistry) Grant(user uuid.UUID, role domain.Role) {
	r.sets[role][user] = struct{}{}
}

// Revoke removes role from user. Returns ErrNotFound when the role is not
// held, and ErrLastOrganizer when it would leave the conference without an
// organizer.
func (r *RoleRegistry) Revoke(user uuid.UUID, role domain.Role) error {
	if !r.HasRole(user, role) {
		return domain.ErrNotFound
	}
	if role == domain.RoleOrganizer && len(r.sets[domain.RoleOrganizer]) == 1 {
		return domain.ErrLastOrganizer
	}
	delete(r.sets[role], user)
	return nil
}

// RemoveUser revokes every role user holds. Returns ErrNotFound when the
// user is not a member, and ErrLastOrganizer when the user is the
// conference's only organizer; in both cases nothing changes.
func (r *RoleRegistry) RemoveUser(user uuid.UUID) error {
	if !r.IsMember(user) {
		return domain.ErrNotFound
	}
	if r.HasRole(user, domain.RoleOrganizer) && len(r.sets[domain.RoleOrganizer]) == 1 {
		return domain.ErrLastOrganizer
	}
	for _, set := range r.sets {
		delete(set, user)
	}
	return nil
}

// Users returns a snapshot of the users holding role, sorted by ID for
// stable output. Mutating the result does not touch registry state.
func (r *RoleRegistry) Users(role domain.Role) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(r.sets[role]))
	for id := range r.sets[role] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Count returns the number of users holding role.
func (r *RoleRegistry) Count(role domain.Role) int {
	return len(r.sets[role])
}

// assignments flattens the registry into persistable role assignments.
func (r *RoleRegistry) assignments() []domain.RoleAssignment {
	var out []domain.RoleAssignment
	for _, role := range domain.Roles {
		for _, id := range r.Users(role) {
			out = append(out, domain.RoleAssignment{UserID: id, Role: role})
		}
	}
	return out
}
