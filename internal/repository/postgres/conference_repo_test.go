package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"conventionhub/internal/domain"
)

func testState(t *testing.T) *domain.ConferenceState {
	t.Helper()
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	window, err := domain.NewTimeRange(day.Add(8*time.Hour), day.Add(20*time.Hour))
	require.NoError(t, err)
	talk, err := domain.NewTimeRange(day.Add(10*time.Hour), day.Add(11*time.Hour))
	require.NoError(t, err)

	roomID := uuid.New()
	return &domain.ConferenceState{
		Conference: domain.Conference{
			ID:        uuid.New(),
			Name:      "GopherCon",
			Time:      window,
			CreatedAt: day,
			UpdatedAt: day,
		},
		Roles: []domain.RoleAssignment{
			{UserID: uuid.New(), Role: domain.RoleOrganizer},
		},
		Rooms: []*domain.Room{
			{ID: roomID, Location: "Hall A", Capacity: 100},
		},
		Events: []*domain.Event{
			{
				ID:         uuid.New(),
				Name:       "Talk",
				Time:       talk,
				RoomID:     &roomID,
				SpeakerIDs: []uuid.UUID{uuid.New()},
			},
		},
	}
}

// expectChildInserts covers insertChildren for the testState snapshot: one
// role, one room, one event with a single speaker.
func expectChildInserts(mock sqlmock.Sqlmock, state *domain.ConferenceState) {
	mock.ExpectExec(`INSERT INTO conference_roles`).
		WithArgs(state.ID, state.Roles[0].UserID, "organizer").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs(state.Rooms[0].ID, state.ID, "Hall A", 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO events`).
		WithArgs(state.Events[0].ID, state.ID, "Talk",
			state.Events[0].Time.Start, state.Events[0].Time.End,
			*state.Events[0].RoomID, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO event_speakers`).
		WithArgs(state.Events[0].ID, state.Events[0].SpeakerIDs[0]).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectChildDeletes(mock sqlmock.Sqlmock, confID uuid.UUID) {
	for _, pattern := range []string{
		`DELETE FROM event_speakers`,
		`DELETE FROM event_attendees`,
		`DELETE FROM events WHERE conference_id`,
		`DELETE FROM rooms`,
		`DELETE FROM conference_roles`,
	} {
		mock.ExpectExec(pattern).
			WithArgs(confID).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestConferenceRepository_Create(t *testing.T) {
	ctx := context.Background()
	state := testState(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO conferences`).
		WithArgs(state.ID, "GopherCon", state.Time.Start, state.Time.End, state.CreatedAt, state.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectChildInserts(mock, state)
	mock.ExpectCommit()

	repo := NewConferenceRepository(db)
	require.NoError(t, repo.Create(ctx, state))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConferenceRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces child rows in one transaction", func(t *testing.T) {
		state := testState(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE conferences`).
			WithArgs(state.ID, "GopherCon", state.Time.Start, state.Time.End, state.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectChildDeletes(mock, state.ID)
		expectChildInserts(mock, state)
		mock.ExpectCommit()

		repo := NewConferenceRepository(db)
		require.NoError(t, repo.Save(ctx, state))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown conference rolls back", func(t *testing.T) {
		state := testState(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE conferences`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewConferenceRepository(db)
		require.ErrorIs(t, repo.Save(ctx, state), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		state := testState(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE conferences`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectChildDeletes(mock, state.ID)
		mock.ExpectExec(`INSERT INTO conference_roles`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewConferenceRepository(db)
		require.Error(t, repo.Save(ctx, state))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConferenceRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles the snapshot from all tables", func(t *testing.T) {
		state := testState(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, starts_at, ends_at, created_at, updated_at\s+FROM conferences`).
			WithArgs(state.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "starts_at", "ends_at", "created_at", "updated_at"}).
				AddRow(state.ID.String(), "GopherCon", state.Time.Start, state.Time.End, state.CreatedAt, state.UpdatedAt))
		mock.ExpectQuery(`SELECT user_id, role FROM conference_roles`).
			WithArgs(state.ID).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "role"}).
				AddRow(state.Roles[0].UserID.String(), "organizer"))
		mock.ExpectQuery(`SELECT id, location, capacity FROM rooms`).
			WithArgs(state.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "location", "capacity"}).
				AddRow(state.Rooms[0].ID.String(), "Hall A", 100))
		mock.ExpectQuery(`SELECT id, name, starts_at, ends_at, room_id, capacity FROM events`).
			WithArgs(state.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "starts_at", "ends_at", "room_id", "capacity"}).
				AddRow(state.Events[0].ID.String(), "Talk", state.Events[0].Time.Start, state.Events[0].Time.End, state.Rooms[0].ID.String(), 0))
		mock.ExpectQuery(`FROM event_speakers s JOIN events e`).
			WithArgs(state.ID).
			WillReturnRows(sqlmock.NewRows([]string{"event_id", "user_id", "kind"}).
				AddRow(state.Events[0].ID.String(), state.Events[0].SpeakerIDs[0].String(), "speaker"))

		repo := NewConferenceRepository(db)
		got, err := repo.Get(ctx, state.ID)
		require.NoError(t, err)
		require.Equal(t, state.ID, got.ID)
		require.Equal(t, "GopherCon", got.Name)
		require.Equal(t, state.Roles, got.Roles)
		require.Len(t, got.Rooms, 1)
		require.Equal(t, state.Rooms[0].ID, got.Rooms[0].ID)
		require.Len(t, got.Events, 1)
		require.NotNil(t, got.Events[0].RoomID)
		require.Equal(t, state.Rooms[0].ID, *got.Events[0].RoomID)
		require.Equal(t, state.Events[0].SpeakerIDs, got.Events[0].SpeakerIDs)
		require.Empty(t, got.Events[0].AttendeeIDs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT id, name, starts_at, ends_at, created_at, updated_at\s+FROM conferences`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		repo := NewConferenceRepository(db)
		_, err = repo.Get(ctx, id)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConferenceRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		id := uuid.New()
		mock.ExpectBegin()
		expectChildDeletes(mock, id)
		mock.ExpectExec(`DELETE FROM conferences`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewConferenceRepository(db)
		require.NoError(t, repo.Delete(ctx, id))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		id := uuid.New()
		mock.ExpectBegin()
		expectChildDeletes(mock, id)
		mock.ExpectExec(`DELETE FROM conferences`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewConferenceRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, id), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConferenceRepository_List(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT c.id, c.name, c.starts_at, c.ends_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "starts_at", "ends_at", "organizers", "rooms", "events"}).
			AddRow(first.String(), "GopherCon", day.Add(8*time.Hour), day.Add(20*time.Hour), 2, 3, 5).
			AddRow(second.String(), "RustConf", day.Add(9*time.Hour), day.Add(18*time.Hour), 1, 0, 0))

	repo := NewConferenceRepository(db)
	out, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, first, out[0].ID)
	require.Equal(t, 2, out[0].Organizers)
	require.Equal(t, "RustConf", out[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
