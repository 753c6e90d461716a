package convention

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"conventionhub/internal/domain"
)

type room struct {
	id       uuid.UUID
	location string
	capacity int
	booked   []domain.TimeRange
}

// RoomRegistry owns the rooms of one conference and their booked intervals.
// Not safe for concurrent use on its own; the owning Conference serializes
// access.
type RoomRegistry struct {
	rooms map[uuid.UUID]*room
}

func newRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[uuid.UUID]*room)}
}

func validateLocation(location string) error {
	if location == "" {
		return fmt.Errorf("%w: room location must not be empty", domain.ErrInvalidInput)
	}
	return nil
}

func validateCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: room capacity must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// Create adds a room and returns its ID.
func (r *RoomRegistry) Create(location string, capacity int) (uuid.UUID, error) {
	if err := validateLocation(location); err != nil {
		return uuid.Nil, err
	}
	if err := validateCapacity(capacity); err != nil {
		return uuid.Nil, err
	}
	rm := &room{id: uuid.New(), location: location, capacity: capacity}
	r.rooms[rm.id] = rm
	return rm.id, nil
}

func (r *RoomRegistry) get(id uuid.UUID) (*room, error) {
	rm, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	return rm, nil
}

// Exists reports whether a room with the given ID is registered.
func (r *RoomRegistry) Exists(id uuid.UUID) bool {
	_, ok := r.rooms[id]
	return ok
}

// Update edits a room's location and/or capacity; nil fields are left
// unchanged. Existence and both values are validated before either field is
// applied, so a failed update leaves the room untouched.
func (r *RoomRegistry) Update(id uuid.UUID, location *string, capacity *int) error {
	rm, err := r.get(id)
	if err != nil {
		return err
	}
	if location != nil {
		if err := validateLocation(*location); err != nil {
			return err
		}
	}
	if capacity != nil {
		if err := validateCapacity(*capacity); err != nil {
			return err
		}
	}
	if location != nil {
		rm.location = *location
	}
	if capacity != nil {
		rm.capacity = *capacity
	}
	return nil
}

// SetLocation updates a room's location.
func (r *RoomRegistry) SetLocation(id uuid.UUID, location string) error {
	return r.Update(id, &location, nil)
}

// SetCapacity updates a room's capacity. Reducing capacity below the
// attendee count of an already-scheduled event is allowed: capacity is
// enforced at registration time only, never retroactively.
func (r *RoomRegistry) SetCapacity(id uuid.UUID, capacity int) error {
	return r.Update(id, nil, &capacity)
}

// Capacity returns the room's capacity.
func (r *RoomRegistry) Capacity(id uuid.UUID) (int, error) {
	rm, err := r.get(id)
	if err != nil {
		return 0, err
	}
	return rm.capacity, nil
}

// Book reserves tr in the room. Fails with a RoomConflictError naming the
// already-booked interval when tr overlaps an existing booking.
func (r *RoomRegistry) Book(id uuid.UUID, tr domain.TimeRange) error {
	rm, err := r.get(id)
	if err != nil {
		return err
	}
	if conflict, ok := domain.FindConflict(tr, rm.booked); ok {
		return &domain.RoomConflictError{RoomID: id, Conflict: conflict}
	}
	rm.booked = append(rm.booked, tr)
	return nil
}

// Unbook releases a previously booked interval. Releasing an interval that
// is not booked is a no-op.
func (r *RoomRegistry) Unbook(id uuid.UUID, tr domain.TimeRange) error {
	rm, err := r.get(id)
	if err != nil {
		return err
	}
	for i, b := range rm.booked {
		if b.Equal(tr) {
			rm.booked = append(rm.booked[:i], rm.booked[i+1:]...)
			return nil
		}
	}
	return nil
}

// Delete removes a room. The caller must first verify no event references
// the room.
func (r *RoomRegistry) Delete(id uuid.UUID) error {
	if _, err := r.get(id); err != nil {
		return err
	}
	delete(r.rooms, id)
	return nil
}

// Get returns a snapshot copy of the room.
func (r *RoomRegistry) Get(id uuid.UUID) (*domain.Room, error) {
	rm, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return rm.snapshot(), nil
}

// List returns snapshot copies of all rooms, sorted by location then ID.
func (r *RoomRegistry) List() []*domain.Room {
	out := make([]*domain.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (rm *room) snapshot() *domain.Room {
	booked := make([]domain.TimeRange, len(rm.booked))
	copy(booked, rm.booked)
	sort.Slice(booked, func(i, j int) bool { return booked[i].Start.Before(booked[j].Start) })
	return &domain.Room{ID: rm.id, Location: rm.location, Capacity: rm.capacity, Booked: booked}
}
