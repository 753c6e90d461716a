package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conference is the top-level scheduling domain. Its time range bounds every
// event scheduled inside it.
// swagger:model Conference
type Conference struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Time      TimeRange `json:"time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConferenceState is the full snapshot of one conference: the entity plus its
// role assignments, rooms, and events. It is what repositories persist and
// what the convention engine restores from. All slices are owned by the
// snapshot; mutating them never touches live registry state.
type ConferenceState struct {
	Conference
	Roles  []RoleAssignment `json:"roles"`
	Rooms  []*Room          `json:"rooms"`
	Events []*Event         `json:"events"`
}

// ConferenceSummary is the read-only listing view of a conference.
// swagger:model ConferenceSummary
type ConferenceSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Time       TimeRange `json:"time"`
	Organizers int       `json:"organizers"`
	Rooms      int       `json:"rooms"`
	Events     int       `json:"events"`
}

// RemovedUser reports the cascade of removing a user from a conference.
// OrphanedEventIDs lists events that kept their slot but lost this user as a
// speaker; the caller decides whether to reschedule or delete them.
type RemovedUser struct {
	UserID           uuid.UUID   `json:"user_id"`
	OrphanedEventIDs []uuid.UUID `json:"orphaned_event_ids"`
}

// CreateEventParams carries the inputs for scheduling a new event.
type CreateEventParams struct {
	Name       string
	Time       TimeRange
	RoomID     *uuid.UUID
	Capacity   int
	SpeakerIDs []uuid.UUID
}

// ConferenceRepository persists conference snapshots. Get returns
// ErrNotFound for unknown IDs. Save replaces the stored snapshot
// atomically.
type ConferenceRepository interface {
	Create(ctx context.Context, state *ConferenceState) error
	Get(ctx context.Context, id uuid.UUID) (*ConferenceState, error)
	Save(ctx context.Context, state *ConferenceState) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*ConferenceSummary, error)
}

// ConferenceService is the authorized mutation and query surface over
// conferences. Every call names the acting user explicitly; there is no
// ambient session state.
type ConferenceService interface {
	Create(ctx context.Context, actor Actor, name string, tr TimeRange) (*ConferenceSummary, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*ConferenceState, error)
	List(ctx context.Context) ([]*ConferenceSummary, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error

	GrantRole(ctx context.Context, actor Actor, confID, userID uuid.UUID, role Role) error
	RevokeRole(ctx context.Context, actor Actor, confID, userID uuid.UUID, role Role) error
	RemoveUser(ctx context.Context, actor Actor, confID, userID uuid.UUID) (*RemovedUser, error)
	ListUsers(ctx context.Context, actor Actor, confID uuid.UUID, role Role) ([]uuid.UUID, error)

	CreateRoom(ctx context.Context, actor Actor, confID uuid.UUID, location string, capacity int) (*Room, error)
	UpdateRoom(ctx context.Context, actor Actor, confID, roomID uuid.UUID, location *string, capacity *int) (*Room, error)
	DeleteRoom(ctx context.Context, actor Actor, confID, roomID uuid.UUID) error
	ListRooms(ctx context.Context, actor Actor, confID uuid.UUID) ([]*Room, error)

	CreateEvent(ctx context.Context, actor Actor, confID uuid.UUID, params CreateEventParams) (*Event, error)
	RescheduleEvent(ctx context.Context, actor Actor, confID, eventID uuid.UUID, newTime TimeRange, newRoomID *uuid.UUID) (*Event, error)
	DeleteEvent(ctx context.Context, actor Actor, confID, eventID uuid.UUID) error
	ListEvents(ctx context.Context, actor Actor, confID uuid.UUID) ([]*Event, error)

	RegisterAttendee(ctx context.Context, actor Actor, confID, eventID, userID uuid.UUID) error
	UnregisterAttendee(ctx context.Context, actor Actor, confID, eventID, userID uuid.UUID) error

	InviteAttendee(ctx context.Context, actor Actor, confID, userID uuid.UUID) error
}
