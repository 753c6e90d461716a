package convention

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"conventionhub/internal/domain"
)

type event struct {
	id        uuid.UUID
	name      string
	time      domain.TimeRange
	roomID    *uuid.UUID
	capacity  int
	speakers  map[uuid.UUID]struct{}
	attendees map[uuid.UUID]struct{}
}

// EventRegistry owns the events of one conference and validates them against
// the room registry and role registry. Not safe for concurrent use on its
// own; the owning Conference serializes access.
type EventRegistry struct {
	events map[uuid.UUID]*event
}

func newEventRegistry() *EventRegistry {
	return &EventRegistry{events: make(map[uuid.UUID]*event)}
}

func (r *EventRegistry) get(id uuid.UUID) (*event, error) {
	ev, ok := r.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
	}
	return ev, nil
}

// speakerConflict returns the event already occupying candidate for the
// given speaker, skipping exclude. Returns nil when the speaker is free.
func (r *EventRegistry) speakerConflict(speaker uuid.UUID, candidate domain.TimeRange, exclude uuid.UUID) *domain.SpeakerConflictError {
	for _, ev := range r.events {
		if ev.id == exclude {
			continue
		}
		if _, ok := ev.speakers[speaker]; !ok {
			continue
		}
		if ev.time.Overlaps(candidate) {
			return &domain.SpeakerConflictError{SpeakerID: speaker, EventID: ev.id}
		}
	}
	return nil
}

// Create schedules a new event. The time range must lie within window, every
// speaker must hold the speaker role, and neither the room nor any speaker
// may be double-booked. The room is booked first; if a speaker conflict is
// found afterwards the booking is rolled back, so a failed create leaves no
// trace.
func (r *EventRegistry) Create(params domain.CreateEventParams, window domain.TimeRange, rooms *RoomRegistry, roles *RoleRegistry) (*domain.Event, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: event name must not be empty", domain.ErrInvalidInput)
	}
	if params.Capacity < 0 {
		return nil, fmt.Errorf("%w: event capacity must not be negative", domain.ErrInvalidInput)
	}
	if !params.Time.Start.Before(params.Time.End) {
		return nil, fmt.Errorf("%w: event time range start must be before end", domain.ErrInvalidInput)
	}
	if !window.Contains(params.Time) {
		return nil, fmt.Errorf("%w: event time %s is outside the conference window %s", domain.ErrInvalidInput, params.Time, window)
	}
	for _, speaker := range params.SpeakerIDs {
		if !roles.HasRole(speaker, domain.RoleSpeaker) {
			return nil, fmt.Errorf("user %s does not hold the speaker role: %w", speaker, domain.ErrForbidden)
		}
	}

	if params.RoomID != nil {
		if err := rooms.Book(*params.RoomID, params.Time); err != nil {
			return nil, err
		}
	}
	for _, speaker := range params.SpeakerIDs {
		if conflict := r.speakerConflict(speaker, params.Time, uuid.Nil); conflict != nil {
			if params.RoomID != nil {
				_ = rooms.Unbook(*params.RoomID, params.Time)
			}
			return nil, conflict
		}
	}

	ev := &event{
		id:        uuid.New(),
		name:      params.Name,
		time:      params.Time,
		capacity:  params.Capacity,
		speakers:  make(map[uuid.UUID]struct{}, len(params.SpeakerIDs)),
		attendees: make(map[uuid.UUID]struct{}),
	}
	if params.RoomID != nil {
		id := *params.RoomID
		ev.roomID = &id
	}
	for _, speaker := range params.SpeakerIDs {
		ev.speakers[speaker] = struct{}{}
	}
	r.events[ev.id] = ev
	return ev.snapshot(), nil
}

// Reschedule moves an event to a new time range and room. The full conflict
// check runs against the other events before anything changes; on any
// conflict the event keeps its original schedule.
func (r *EventRegistry) Reschedule(id uuid.UUID, newTime domain.TimeRange, newRoomID *uuid.UUID, window domain.TimeRange, rooms *RoomRegistry) (*domain.Event, error) {
	ev, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if !newTime.Start.Before(newTime.End) {
		return nil, fmt.Errorf("%w: event time range start must be before end", domain.ErrInvalidInput)
	}
	if !window.Contains(newTime) {
		return nil, fmt.Errorf("%w: event time %s is outside the conference window %s", domain.ErrInvalidInput, newTime, window)
	}
	for speaker := range ev.speakers {
		if conflict := r.speakerConflict(speaker, newTime, ev.id); conflict != nil {
			return nil, conflict
		}
	}

	// Release the current booking before probing the new slot so an event
	// can move within its own room, then restore it on failure.
	if ev.roomID != nil {
		if err := rooms.Unbook(*ev.roomID, ev.time); err != nil {
			return nil, err
		}
	}
	if newRoomID != nil {
		if err := rooms.Book(*newRoomID, newTime); err != nil {
			if ev.roomID != nil {
				_ = rooms.Book(*ev.roomID, ev.time)
			}
			return nil, err
		}
	}

	ev.time = newTime
	ev.roomID = nil
	if newRoomID != nil {
		id := *newRoomID
		ev.roomID = &id
	}
	return ev.snapshot(), nil
}

// Register adds userID as an attendee of the event. The user must hold the
// attendee role; the registration must not exceed the room's capacity (or
// the event's own limit when it has no room) and must not already exist.
func (r *EventRegistry) Register(id, userID uuid.UUID, roles *RoleRegistry, rooms *RoomRegistry) error {
	ev, err := r.get(id)
	if err != nil {
		return err
	}
	if !roles.HasRole(userID, domain.RoleAttendee) {
		return fmt.Errorf("user %s does not hold the attendee role: %w", userID, domain.ErrForbidden)
	}
	if _, ok := ev.attendees[userID]; ok {
		return domain.ErrAlreadyRegistered
	}
	capacity := ev.capacity
	if ev.roomID != nil {
		capacity, err = rooms.Capacity(*ev.roomID)
		if err != nil {
			return err
		}
	}
	if capacity > 0 && len(ev.attendees) >= capacity {
		return &domain.CapacityExceededError{EventID: ev.id, Capacity: capacity}
	}
	ev.attendees[userID] = struct{}{}
	return nil
}

// Unregister removes userID from the event's attendees. Unregistering a
// user who is not registered is a no-op.
func (r *EventRegistry) Unregister(id, userID uuid.UUID) error {
	ev, err := r.get(id)
	if err != nil {
		return err
	}
	delete(ev.attendees, userID)
	return nil
}

// Delete removes the event, releasing its room booking and clearing its
// speaker and attendee assignments.
func (r *EventRegistry) Delete(id uuid.UUID, rooms *RoomRegistry) error {
	ev, err := r.get(id)
	if err != nil {
		return err
	}
	if ev.roomID != nil {
		if err := rooms.Unbook(*ev.roomID, ev.time); err != nil {
			return err
		}
	}
	delete(r.events, id)
	return nil
}

// RoomInUse reports whether any event currently references the room.
func (r *EventRegistry) RoomInUse(roomID uuid.UUID) bool {
	for _, ev := range r.events {
		if ev.roomID != nil && *ev.roomID == roomID {
			return true
		}
	}
	return false
}

// RemoveUser clears the user's speaker assignments and attendee
// registrations across all events. Events that lose the user as a speaker
// keep their slot; their IDs are returned so the caller can surface them.
func (r *EventRegistry) RemoveUser(userID uuid.UUID) []uuid.UUID {
	var orphaned []uuid.UUID
	for _, ev := range r.events {
		if _, ok := ev.speakers[userID]; ok {
			delete(ev.speakers, userID)
			orphaned = append(orphaned, ev.id)
		}
		delete(ev.attendees, userID)
	}
	sort.Slice(orphaned, func(i, j int) bool { return orphaned[i].String() < orphaned[j].String() })
	return orphaned
}

// Get returns a snapshot copy of the event.
func (r *EventRegistry) Get(id uuid.UUID) (*domain.Event, error) {
	ev, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return ev.snapshot(), nil
}

// List returns snapshot copies of all events, sorted by start time then ID.
func (r *EventRegistry) List() []*domain.Event {
	out := make([]*domain.Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Time.Start.Equal(out[j].Time.Start) {
			return out[i].Time.Start.Before(out[j].Time.Start)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (ev *event) snapshot() *domain.Event {
	out := &domain.Event{
		ID:          ev.id,
		Name:        ev.name,
		Time:        ev.time,
		Capacity:    ev.capacity,
		SpeakerIDs:  sortedIDs(ev.speakers),
		AttendeeIDs: sortedIDs(ev.attendees),
	}
	if ev.roomID != nil {
		id := *ev.roomID
		out.RoomID = &id
	}
	return out
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
