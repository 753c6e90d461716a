package domain

import "github.com/google/uuid"

// Event is a time-boxed talk or activity within a conference.
// swagger:model Event
type Event struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Time TimeRange `json:"time"`
	// RoomID is nil while the event has no room assigned.
	RoomID *uuid.UUID `json:"room_id,omitempty"`
	// Capacity limits registrations when the event has no room.
	// Zero means unlimited. With a room assigned, the room's capacity wins.
	Capacity    int         `json:"capacity"`
	SpeakerIDs  []uuid.UUID `json:"speaker_ids"`
	AttendeeIDs []uuid.UUID `json:"attendee_ids"`
}
