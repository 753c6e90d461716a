package convention

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"conventionhub/internal/domain"
)

// Conference binds one conference to its role, room, and event registries
// and exposes the authorized mutation surface. The embedded mutex is the
// unit of mutual exclusion: all writes on a conference serialize through it,
// reads run concurrently and return copies, never live registry references.
//
// A conference is Active until Delete succeeds; every mutation on a deleted
// conference fails with ErrConferenceDeleted.
type Conference struct {
	mu sync.RWMutex

	id        uuid.UUID
	name      string
	window    domain.TimeRange
	createdAt time.Time
	updatedAt time.Time
	deleted   bool

	roles  *RoleRegistry
	rooms  *RoomRegistry
	events *EventRegistry
}

// New creates an Active conference with creator as its sole organizer.
func New(name string, window domain.TimeRange, creator uuid.UUID) (*Conference, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: conference name must not be empty", domain.ErrInvalidInput)
	}
	if !window.Start.Before(window.End) {
		return nil, fmt.Errorf("%w: conference time range start must be before end", domain.ErrInvalidInput)
	}
	if creator == uuid.Nil {
		return nil, fmt.Errorf("%w: conference creator is required", domain.ErrInvalidInput)
	}
	now := time.Now()
	c := &Conference{
		id:        uuid.New(),
		name:      name,
		window:    window,
		createdAt: now,
		updatedAt: now,
		roles:     newRoleRegistry(),
		rooms:     newRoomRegistry(),
		events:    newEventRegistry(),
	}
	c.roles.Grant(creator, domain.RoleOrganizer)
	return c, nil
}

// Restore rebuilds a conference from a persisted snapshot, re-running the
// invariant checks rather than trusting the stored data: the lone-organizer
// rule, room validation, event bounds, and room bookings are all
// re-established. Room bookings are derived from the events, not read from
// the snapshot, so the two cannot drift.
func Restore(state *domain.ConferenceState) (*Conference, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: nil conference state", domain.ErrInvalidInput)
	}
	c := &Conference{
		id:        state.ID,
		name:      state.Name,
		window:    state.Time,
		createdAt: state.CreatedAt,
		updatedAt: state.UpdatedAt,
		roles:     newRoleRegistry(),
		rooms:     newRoomRegistry(),
		events:    newEventRegistry(),
	}
	if c.name == "" || !c.window.Start.Before(c.window.End) {
		return nil, fmt.Errorf("restore conference %s: %w: bad name or time range", state.ID, domain.ErrInvalidInput)
	}
	for _, a := range state.Roles {
		if !a.Role.Valid() {
			return nil, fmt.Errorf("restore conference %s: %w: unknown role %q", state.ID, domain.ErrInvalidInput, a.Role)
		}
		c.roles.Grant(a.UserID, a.Role)
	}
	if c.roles.Count(domain.RoleOrganizer) == 0 {
		return nil, fmt.Errorf("restore conference %s: %w", state.ID, domain.ErrLastOrganizer)
	}
	for _, rm := range state.Rooms {
		if err := validateLocation(rm.Location); err != nil {
			return nil, fmt.Errorf("restore conference %s: room %s: %w", state.ID, rm.ID, err)
		}
		if err := validateCapacity(rm.Capacity); err != nil {
			return nil, fmt.Errorf("restore conference %s: room %s: %w", state.ID, rm.ID, err)
		}
		c.rooms.rooms[rm.ID] = &room{id: rm.ID, location: rm.Location, capacity: rm.Capacity}
	}
	for _, e := range state.Events {
		if !c.window.Contains(e.Time) {
			return nil, fmt.Errorf("restore conference %s: event %s: %w: outside conference window", state.ID, e.ID, domain.ErrInvalidInput)
		}
		ev := &event{
			id:        e.ID,
			name:      e.Name,
			time:      e.Time,
			capacity:  e.Capacity,
			speakers:  make(map[uuid.UUID]struct{}, len(e.SpeakerIDs)),
			attendees: make(map[uuid.UUID]struct{}, len(e.AttendeeIDs)),
		}
		for _, s := range e.SpeakerIDs {
			if conflict := c.events.speakerConflict(s, e.Time, e.ID); conflict != nil {
				return nil, fmt.Errorf("restore conference %s: event %s: %w", state.ID, e.ID, conflict)
			}
			ev.speakers[s] = struct{}{}
		}
		for _, a := range e.AttendeeIDs {
			ev.attendees[a] = struct{}{}
		}
		if e.RoomID != nil {
			if err := c.rooms.Book(*e.RoomID, e.Time); err != nil {
				return nil, fmt.Errorf("restore conference %s: event %s: %w", state.ID, e.ID, err)
			}
			id := *e.RoomID
			ev.roomID = &id
		}
		c.events.events[ev.id] = ev
	}
	return c, nil
}

// ID returns the conference identifier.
func (c *Conference) ID() uuid.UUID { return c.id }

func (c *Conference) requireActive() error {
	if c.deleted {
		return domain.ErrConferenceDeleted
	}
	return nil
}

func (c *Conference) requireOrganizer(actor domain.Actor) error {
	if actor.Admin {
		return nil
	}
	if !c.roles.HasRole(actor.UserID, domain.RoleOrganizer) {
		return fmt.Errorf("user %s is not an organizer of conference %s: %w", actor.UserID, c.id, domain.ErrForbidden)
	}
	return nil
}

func (c *Conference) touch() {
	c.updatedAt = time.Now()
}

// Delete marks the conference deleted. Organizer only; terminal.
func (c *Conference) Delete(actor domain.Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return err
	}
	c.deleted = true
	c.touch()
	return nil
}

// GrantRole gives userID the role. Organizer only; idempotent.
func (c *Conference) GrantRole(actor domain.Actor, userID uuid.UUID, role domain.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	c.roles.Grant(userID, role)
	c.touch()
	return nil
}

// RevokeRole removes the role from userID. Organizer only; guarded by the
// lone-organizer rule.
func (c *Conference) RevokeRole(actor domain.Actor, userID uuid.UUID, role domain.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if err := c.roles.Revoke(userID, role); err != nil {
		return err
	}
	c.touch()
	return nil
}

// RemoveUser revokes every role userID holds and cascades: speaker
// assignments are cleared (affected events keep their slot and are reported
// back), attendee registrations are cleared. Rejected outright when userID
// is the last organizer.
func (c *Conference) RemoveUser(actor domain.Actor, userID uuid.UUID) (*domain.RemovedUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return nil, err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return nil, err
	}
	if err := c.roles.RemoveUser(userID); err != nil {
		return nil, err
	}
	orphaned := c.events.RemoveUser(userID)
	c.touch()
	return &domain.RemovedUser{UserID: userID, OrphanedEventIDs: orphaned}, nil
}

// HasRole reports whether userID holds role.
func (c *Conference) HasRole(userID uuid.UUID, role domain.Role) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles.HasRole(userID, role)
}

// UsersByRole returns a snapshot of the users holding role.
func (c *Conference) UsersByRole(role domain.Role) []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles.Users(role)
}

// CreateRoom adds a room. Organizer only.
func (c *Conference) CreateRoom(actor domain.Actor, location string, capacity int) (*domain.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return nil, err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return nil, err
	}
	id, err := c.rooms.Create(location, capacity)
	if err != nil {
		return nil, err
	}
	c.touch()
	return c.rooms.Get(id)
}

// UpdateRoom edits a room's location and/or capacity. Organizer only.
// Nil fields are left unchanged; a failed update leaves the room untouched.
func (c *Conference) UpdateRoom(actor domain.Actor, roomID uuid.UUID, location *string, capacity *int) (*domain.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return nil, err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return nil, err
	}
	if err := c.rooms.Update(roomID, location, capacity); err != nil {
		return nil, err
	}
	c.touch()
	return c.rooms.Get(roomID)
}

// DeleteRoom removes a room. Organizer only; fails with ErrRoomInUse while
// any event references the room.
func (c *Conference) DeleteRoom(actor domain.Actor, roomID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return err
	}
	if !c.rooms.Exists(roomID) {
		return fmt.Errorf("room %s: %w", roomID, domain.ErrNotFound)
	}
	if c.events.RoomInUse(roomID) {
		return fmt.Errorf("room %s: %w", roomID, domain.ErrRoomInUse)
	}
	if err := c.rooms.Delete(roomID); err != nil {
		return err
	}
	c.touch()
	return nil
}

// Rooms returns snapshot copies of all rooms.
func (c *Conference) Rooms() []*domain.Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms.List()
}

// CreateEvent schedules a new event. Organizer only.
func (c *Conference) CreateEvent(actor domain.Actor, params domain.CreateEventParams) (*domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return nil, err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return nil, err
	}
	ev, err := c.events.Create(params, c.window, c.rooms, c.roles)
	if err != nil {
		return nil, err
	}
	c.touch()
	return ev, nil
}

// RescheduleEvent moves an event. Organizer only; on any conflict the event
// keeps its original schedule.
func (c *Conference) RescheduleEvent(actor domain.Actor, eventID uuid.UUID, newTime domain.TimeRange, newRoomID *uuid.UUID) (*domain.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return nil, err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return nil, err
	}
	if newRoomID != nil && !c.rooms.Exists(*newRoomID) {
		return nil, fmt.Errorf("room %s: %w", *newRoomID, domain.ErrNotFound)
	}
	ev, err := c.events.Reschedule(eventID, newTime, newRoomID, c.window, c.rooms)
	if err != nil {
		return nil, err
	}
	c.touch()
	return ev, nil
}

// DeleteEvent removes an event and releases its room booking. Organizer only.
func (c *Conference) DeleteEvent(actor domain.Actor, eventID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return err
	}
	if err := c.requireOrganizer(actor); err != nil {
		return err
	}
	if err := c.events.Delete(eventID, c.rooms); err != nil {
		return err
	}
	c.touch()
	return nil
}

// Event returns a snapshot copy of one event.
func (c *Conference) Event(eventID uuid.UUID) (*domain.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events.Get(eventID)
}

// Events returns snapshot copies of all events.
func (c *Conference) Events() []*domain.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events.List()
}

// RegisterAttendee registers userID into the event. Users register
// themselves; organizers and the super-admin may register others.
func (c *Conference) RegisterAttendee(actor domain.Actor, eventID, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return err
	}
	if actor.UserID != userID {
		if err := c.requireOrganizer(actor); err != nil {
			return err
		}
	}
	if err := c.events.Register(eventID, userID, c.roles, c.rooms); err != nil {
		return err
	}
	c.touch()
	return nil
}

// UnregisterAttendee removes userID's registration. Same authorization as
// RegisterAttendee; unregistering a user who is not registered is a no-op.
func (c *Conference) UnregisterAttendee(actor domain.Actor, eventID, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActive(); err != nil {
		return err
	}
	if actor.UserID != userID {
		if err := c.requireOrganizer(actor); err != nil {
			return err
		}
	}
	if err := c.events.Unregister(eventID, userID); err != nil {
		return err
	}
	c.touch()
	return nil
}

// State returns the full persistable snapshot of the conference.
func (c *Conference) State() *domain.ConferenceState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &domain.ConferenceState{
		Conference: domain.Conference{
			ID:        c.id,
			Name:      c.name,
			Time:      c.window,
			CreatedAt: c.createdAt,
			UpdatedAt: c.updatedAt,
		},
		Roles:  c.roles.assignments(),
		Rooms:  c.rooms.List(),
		Events: c.events.List(),
	}
}

// Summary returns the read-only listing view of the conference.
func (c *Conference) Summary() *domain.ConferenceSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &domain.ConferenceSummary{
		ID:         c.id,
		Name:       c.name,
		Time:       c.window,
		Organizers: c.roles.Count(domain.RoleOrganizer),
		Rooms:      len(c.rooms.rooms),
		Events:     len(c.events.events),
	}
}
