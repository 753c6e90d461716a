package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conventionhub/internal/domain"
)

// fakeConferenceRepo is an in-memory ConferenceRepository for tests. Safe
// for concurrent use so service-level serialization can be exercised.
type fakeConferenceRepo struct {
	mu      sync.Mutex
	states  map[uuid.UUID]*domain.ConferenceState
	saveErr error // if set, Save returns this error
	saves   int
}

func newFakeConferenceRepo() *fakeConferenceRepo {
	return &fakeConferenceRepo{states: make(map[uuid.UUID]*domain.ConferenceState)}
}

func (f *fakeConferenceRepo) Create(ctx context.Context, state *domain.ConferenceState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state.ID] = state
	return nil
}

func (f *fakeConferenceRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ConferenceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state, nil
}

func (f *fakeConferenceRepo) Save(ctx context.Context, state *domain.ConferenceState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.states[state.ID]; !ok {
		return domain.ErrNotFound
	}
	f.states[state.ID] = state
	f.saves++
	return nil
}

func (f *fakeConferenceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.states[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.states, id)
	return nil
}

func (f *fakeConferenceRepo) List(ctx context.Context) ([]*domain.ConferenceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ConferenceSummary
	for _, state := range f.states {
		out = append(out, &domain.ConferenceSummary{ID: state.ID, Name: state.Name, Time: state.Time})
	}
	return out, nil
}

// fakeDirectory is an in-memory UserDirectory for tests.
type fakeDirectory struct {
	users  map[uuid.UUID]string // id -> email
	lookup error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[uuid.UUID]string)}
}

func (f *fakeDirectory) add(email string) uuid.UUID {
	id := uuid.New()
	f.users[id] = email
	return id
}

func (f *fakeDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.lookup != nil {
		return false, f.lookup
	}
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeDirectory) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	email, ok := f.users[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return email, nil
}

func (f *fakeDirectory) Email(ctx context.Context, id uuid.UUID) (string, error) {
	email, ok := f.users[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return email, nil
}

// fakeEmailService records sent invitations.
type fakeEmailService struct {
	invitations []*domain.InvitationEmailData
	welcomes    []*domain.WelcomeEmailData
	err         error
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.welcomes = append(f.welcomes, data)
	return nil
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

type conferenceServiceFixture struct {
	svc       domain.ConferenceService
	repo      *fakeConferenceRepo
	directory *fakeDirectory
	email     *fakeEmailService
}

func newConferenceServiceFixture() *conferenceServiceFixture {
	repo := newFakeConferenceRepo()
	directory := newFakeDirectory()
	email := &fakeEmailService{}
	logger := slog.New(slog.DiscardHandler)
	return &conferenceServiceFixture{
		svc:       NewConferenceService(repo, directory, email, logger, 2*time.Second),
		repo:      repo,
		directory: directory,
		email:     email,
	}
}

func window(t *testing.T) domain.TimeRange {
	t.Helper()
	day := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)
	tr, err := domain.NewTimeRange(day, day.Add(12*time.Hour))
	require.NoError(t, err)
	return tr
}

func eventSlot(t *testing.T, startHour, endHour int) domain.TimeRange {
	t.Helper()
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	tr, err := domain.NewTimeRange(day.Add(time.Duration(startHour)*time.Hour), day.Add(time.Duration(endHour)*time.Hour))
	require.NoError(t, err)
	return tr
}

func TestConferenceServiceCreate(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()

	t.Run("creator must exist", func(t *testing.T) {
		_, err := f.svc.Create(ctx, domain.Actor{UserID: uuid.New()}, "GopherCon", window(t))
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("created and persisted", func(t *testing.T) {
		organizer := f.directory.add("org@example.com")
		summary, err := f.svc.Create(ctx, domain.Actor{UserID: organizer}, "GopherCon", window(t))
		require.NoError(t, err)
		assert.Equal(t, "GopherCon", summary.Name)
		assert.Equal(t, 1, summary.Organizers)

		stored, ok := f.repo.states[summary.ID]
		require.True(t, ok)
		require.Len(t, stored.Roles, 1)
		assert.Equal(t, organizer, stored.Roles[0].UserID)
	})
}

func TestConferenceServicePersistsAfterMutation(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)

	room, err := f.svc.CreateRoom(ctx, actor, summary.ID, "Hall A", 50)
	require.NoError(t, err)

	stored := f.repo.states[summary.ID]
	require.Len(t, stored.Rooms, 1)
	assert.Equal(t, room.ID, stored.Rooms[0].ID)
}

func TestConferenceServiceSaveFailureEvictsCache(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)

	f.repo.saveErr = errors.New("connection reset")
	_, err = f.svc.CreateRoom(ctx, actor, summary.ID, "Hall A", 50)
	require.Error(t, err)

	// next read reloads the last persisted state: the room never existed
	f.repo.saveErr = nil
	rooms, err := f.svc.ListRooms(ctx, actor, summary.ID)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

// TestConferenceServiceReadsOpenToAnyAuthenticatedUser pins the read
// surface: membership gates mutations, not reads.
func TestConferenceServiceReadsOpenToAnyAuthenticatedUser(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)
	_, err = f.svc.CreateRoom(ctx, actor, summary.ID, "Hall A", 50)
	require.NoError(t, err)

	stranger := domain.Actor{UserID: uuid.New()}
	_, err = f.svc.Get(ctx, stranger, summary.ID)
	assert.NoError(t, err)
	rooms, err := f.svc.ListRooms(ctx, stranger, summary.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	_, err = f.svc.ListEvents(ctx, stranger, summary.ID)
	assert.NoError(t, err)
	users, err := f.svc.ListUsers(ctx, stranger, summary.ID, domain.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{organizer}, users)
}

// TestConferenceServiceConcurrentMutationsAllPersisted drives concurrent
// mutations on one conference and checks that the persisted snapshot ends up
// containing every committed change: a save must never overwrite storage
// with a snapshot older than one already saved.
func TestConferenceServiceConcurrentMutationsAllPersisted(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateRoom(ctx, actor, summary.ID, fmt.Sprintf("Hall %d", i), 10)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	// a fresh service sees every room in storage, not just in the cache
	other := NewConferenceService(f.repo, f.directory, f.email, slog.New(slog.DiscardHandler), 2*time.Second)
	rooms, err := other.ListRooms(ctx, actor, summary.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, workers)
}

func TestConferenceServiceLoadsFromRepo(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)

	// a second service over the same repo sees the conference
	other := NewConferenceService(f.repo, f.directory, f.email, slog.New(slog.DiscardHandler), 2*time.Second)
	state, err := other.Get(ctx, actor, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, "GopherCon", state.Name)

	_, err = other.Get(ctx, actor, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConferenceServiceGrantRoleRequiresKnownUser(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)

	err = f.svc.GrantRole(ctx, actor, summary.ID, uuid.New(), domain.RoleSpeaker)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	speaker := f.directory.add("spk@example.com")
	assert.NoError(t, f.svc.GrantRole(ctx, actor, summary.ID, speaker, domain.RoleSpeaker))
}

func TestConferenceServiceEventFlow(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)
	speaker := f.directory.add("spk@example.com")
	require.NoError(t, f.svc.GrantRole(ctx, actor, summary.ID, speaker, domain.RoleSpeaker))
	room, err := f.svc.CreateRoom(ctx, actor, summary.ID, "Hall A", 50)
	require.NoError(t, err)

	ev, err := f.svc.CreateEvent(ctx, actor, summary.ID, domain.CreateEventParams{
		Name: "Keynote", Time: eventSlot(t, 10, 11), RoomID: &room.ID,
		SpeakerIDs: []uuid.UUID{speaker},
	})
	require.NoError(t, err)

	_, err = f.svc.CreateEvent(ctx, actor, summary.ID, domain.CreateEventParams{
		Name: "Clash", Time: eventSlot(t, 10, 11), RoomID: &room.ID,
	})
	assert.True(t, domain.IsConflict(err))

	moved, err := f.svc.RescheduleEvent(ctx, actor, summary.ID, ev.ID, eventSlot(t, 14, 15), &room.ID)
	require.NoError(t, err)
	assert.True(t, moved.Time.Equal(eventSlot(t, 14, 15)))

	require.NoError(t, f.svc.DeleteEvent(ctx, actor, summary.ID, ev.ID))
	events, err := f.svc.ListEvents(ctx, actor, summary.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestConferenceServiceRegisterAttendee(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)
	attendee := f.directory.add("att@example.com")
	require.NoError(t, f.svc.GrantRole(ctx, actor, summary.ID, attendee, domain.RoleAttendee))
	ev, err := f.svc.CreateEvent(ctx, actor, summary.ID, domain.CreateEventParams{
		Name: "Workshop", Time: eventSlot(t, 10, 11), Capacity: 1,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.RegisterAttendee(ctx, domain.Actor{UserID: attendee}, summary.ID, ev.ID, attendee))

	err = f.svc.RegisterAttendee(ctx, domain.Actor{UserID: attendee}, summary.ID, ev.ID, attendee)
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	err = f.svc.RegisterAttendee(ctx, actor, summary.ID, ev.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, f.svc.UnregisterAttendee(ctx, actor, summary.ID, ev.ID, attendee))
}

func TestConferenceServiceDelete(t *testing.T) {
	f := newConferenceServiceFixture()
	ctx := context.Background()
	organizer := f.directory.add("org@example.com")
	actor := domain.Actor{UserID: organizer}
	summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, actor, summary.ID))
	_, ok := f.repo.states[summary.ID]
	assert.False(t, ok)

	_, err = f.svc.Get(ctx, actor, summary.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConferenceServiceInviteAttendee(t *testing.T) {
	t.Run("grants role and sends email", func(t *testing.T) {
		f := newConferenceServiceFixture()
		ctx := context.Background()
		organizer := f.directory.add("org@example.com")
		actor := domain.Actor{UserID: organizer}
		summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
		require.NoError(t, err)
		invitee := f.directory.add("new@example.com")

		require.NoError(t, f.svc.InviteAttendee(ctx, actor, summary.ID, invitee))

		users, err := f.svc.ListUsers(ctx, actor, summary.ID, domain.RoleAttendee)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{invitee}, users)

		require.Len(t, f.email.invitations, 1)
		assert.Equal(t, "new@example.com", f.email.invitations[0].Email)
		assert.Equal(t, "GopherCon", f.email.invitations[0].ConferenceName)
	})

	t.Run("mail failure does not roll back the grant", func(t *testing.T) {
		f := newConferenceServiceFixture()
		ctx := context.Background()
		organizer := f.directory.add("org@example.com")
		actor := domain.Actor{UserID: organizer}
		summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
		require.NoError(t, err)
		invitee := f.directory.add("new@example.com")
		f.email.err = errors.New("ses throttled")

		require.NoError(t, f.svc.InviteAttendee(ctx, actor, summary.ID, invitee))
		users, err := f.svc.ListUsers(ctx, actor, summary.ID, domain.RoleAttendee)
		require.NoError(t, err)
		assert.Contains(t, users, invitee)
	})

	t.Run("unknown invitee", func(t *testing.T) {
		f := newConferenceServiceFixture()
		ctx := context.Background()
		organizer := f.directory.add("org@example.com")
		actor := domain.Actor{UserID: organizer}
		summary, err := f.svc.Create(ctx, actor, "GopherCon", window(t))
		require.NoError(t, err)

		err = f.svc.InviteAttendee(ctx, actor, summary.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
