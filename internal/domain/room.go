package domain

import "github.com/google/uuid"

// Room is a bookable space owned by one conference.
// swagger:model Room
type Room struct {
	ID       uuid.UUID `json:"id"`
	Location string    `json:"location"`
	Capacity int       `json:"capacity"`
	// Booked holds the intervals currently occupied by scheduled events.
	Booked []TimeRange `json:"booked"`
}
