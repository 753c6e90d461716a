package convention

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conventionhub/internal/domain"
)

func TestRoleRegistryGrantIsIdempotent(t *testing.T) {
	r := newRoleRegistry()
	user := uuid.New()

	r.Grant(user, domain.RoleSpeaker)
	r.Grant(user, domain.RoleSpeaker)

	assert.True(t, r.HasRole(user, domain.RoleSpeaker))
	assert.Equal(t, 1, r.Count(domain.RoleSpeaker))
}

func TestRoleRegistryMultipleRoles(t *testing.T) {
	r := newRoleRegistry()
	user := uuid.New()

	r.Grant(user, domain.RoleOrganizer)
	r.Grant(user, domain.RoleSpeaker)

	assert.True(t, r.HasRole(user, domain.RoleOrganizer))
	assert.True(t, r.HasRole(user, domain.RoleSpeaker))
	assert.False(t, r.HasRole(user, domain.RoleAttendee))
	assert.True(t, r.IsMember(user))
}

func TestRoleRegistryRevoke(t *testing.T) {
	t.Run("revoke held role", func(t *testing.T) {
		r := newRoleRegistry()
		user := uuid.New()
		r.Grant(user, domain.RoleAttendee)

		require.NoError(t, r.Revoke(user, domain.RoleAttendee))
		assert.False(t, r.HasRole(user, domain.RoleAttendee))
		assert.False(t, r.IsMember(user))
	})

	t.Run("revoke role not held", func(t *testing.T) {
		r := newRoleRegistry()
		err := r.Revoke(uuid.New(), domain.RoleSpeaker)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("revoking one role keeps the others", func(t *testing.T) {
		r := newRoleRegistry()
		user := uuid.New()
		r.Grant(user, domain.RoleSpeaker)
		r.Grant(user, domain.RoleAttendee)

		require.NoError(t, r.Revoke(user, domain.RoleSpeaker))
		assert.True(t, r.HasRole(user, domain.RoleAttendee))
		assert.True(t, r.IsMember(user))
	})
}

func TestRoleRegistryLastOrganizerGuard(t *testing.T) {
	t.Run("revoking sole organizer fails", func(t *testing.T) {
		r := newRoleRegistry()
		organizer := uuid.New()
		r.Grant(organizer, domain.RoleOrganizer)

		err := r.Revoke(organizer, domain.RoleOrganizer)
		assert.ErrorIs(t, err, domain.ErrLastOrganizer)
		assert.True(t, r.HasRole(organizer, domain.RoleOrganizer))
	})

	t.Run("revoking one of two organizers succeeds", func(t *testing.T) {
		r := newRoleRegistry()
		first, second := uuid.New(), uuid.New()
		r.Grant(first, domain.RoleOrganizer)
		r.Grant(second, domain.RoleOrganizer)

		require.NoError(t, r.Revoke(first, domain.RoleOrganizer))
		assert.Equal(t, 1, r.Count(domain.RoleOrganizer))
	})

	t.Run("removing sole organizer fails and keeps other roles", func(t *testing.T) {
		r := newRoleRegistry()
		organizer := uuid.New()
		r.Grant(organizer, domain.RoleOrganizer)
		r.Grant(organizer, domain.RoleAttendee)

		err := r.RemoveUser(organizer)
		assert.ErrorIs(t, err, domain.ErrLastOrganizer)
		assert.True(t, r.HasRole(organizer, domain.RoleAttendee))
	})
}

func TestRoleRegistryRemoveUser(t *testing.T) {
	t.Run("removes every role", func(t *testing.T) {
		r := newRoleRegistry()
		r.Grant(uuid.New(), domain.RoleOrganizer)
		user := uuid.New()
		r.Grant(user, domain.RoleSpeaker)
		r.Grant(user, domain.RoleAttendee)

		require.NoError(t, r.RemoveUser(user))
		assert.False(t, r.IsMember(user))
	})

	t.Run("not a member", func(t *testing.T) {
		r := newRoleRegistry()
		err := r.RemoveUser(uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRoleRegistryUsersSorted(t *testing.T) {
	r := newRoleRegistry()
	for i := 0; i < 5; i++ {
		r.Grant(uuid.New(), domain.RoleAttendee)
	}

	users := r.Users(domain.RoleAttendee)
	require.Len(t, users, 5)
	for i := 1; i < len(users); i++ {
		assert.Less(t, users[i-1].String(), users[i].String())
	}
}
