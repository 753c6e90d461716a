package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors shared across the core. Services wrap unexpected failures
// with fmt.Errorf("...: %w", err) and pass these through unchanged so the
// delivery layer can branch with errors.Is.
var (
	// ErrInvalidInput marks bad input shape: empty names, non-positive
	// capacities, malformed time ranges.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing conference, room, event, or user.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an acting user without the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrLastOrganizer rejects any change that would leave a conference
	// without an organizer.
	ErrLastOrganizer = errors.New("cannot remove the last organizer")

	// ErrRoomInUse rejects deleting a room that an event still references.
	ErrRoomInUse = errors.New("room is referenced by a scheduled event")

	// ErrAlreadyRegistered rejects a duplicate attendee registration.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrConferenceDeleted rejects operations on a deleted conference.
	ErrConferenceDeleted = errors.New("conference has been deleted")

	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// RoomConflictError reports a double-booking attempt on a room, carrying the
// interval that is already booked.
type RoomConflictError struct {
	RoomID   uuid.UUID
	Conflict TimeRange
}

func (e *RoomConflictError) Error() string {
	return fmt.Sprintf("room %s is already booked for %s", e.RoomID, e.Conflict)
}

// SpeakerConflictError reports a speaker scheduled into two overlapping
// events, naming the event already holding the slot.
type SpeakerConflictError struct {
	SpeakerID uuid.UUID
	EventID   uuid.UUID
}

func (e *SpeakerConflictError) Error() string {
	return fmt.Sprintf("speaker %s is already scheduled in event %s", e.SpeakerID, e.EventID)
}

// CapacityExceededError reports a registration that would push an event past
// its capacity.
type CapacityExceededError struct {
	EventID  uuid.UUID
	Capacity int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("event %s is full (capacity %d)", e.EventID, e.Capacity)
}

// IsConflict reports whether err belongs to the conflict family: room or
// speaker double-booking, capacity exhaustion, duplicate registration, or an
// invariant guard such as the lone-organizer rule.
func IsConflict(err error) bool {
	if errors.Is(err, ErrAlreadyRegistered) || errors.Is(err, ErrLastOrganizer) || errors.Is(err, ErrRoomInUse) {
		return true
	}
	var roomErr *RoomConflictError
	var speakerErr *SpeakerConflictError
	var capErr *CapacityExceededError
	return errors.As(err, &roomErr) || errors.As(err, &speakerErr) || errors.As(err, &capErr)
}
