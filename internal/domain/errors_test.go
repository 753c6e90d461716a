package domain

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"room conflict", &RoomConflictError{RoomID: uuid.New()}, true},
		{"speaker conflict", &SpeakerConflictError{SpeakerID: uuid.New(), EventID: uuid.New()}, true},
		{"capacity exceeded", &CapacityExceededError{EventID: uuid.New(), Capacity: 2}, true},
		{"already registered", ErrAlreadyRegistered, true},
		{"last organizer", ErrLastOrganizer, true},
		{"room in use", ErrRoomInUse, true},
		{"wrapped conflict", fmt.Errorf("save: %w", ErrLastOrganizer), true},
		{"not found", ErrNotFound, false},
		{"forbidden", ErrForbidden, false},
		{"invalid input", ErrInvalidInput, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConflict(tt.err))
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		got, err := ParseRole(string(role))
		assert.NoError(t, err)
		assert.Equal(t, role, got)
	}

	_, err := ParseRole("janitor")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
