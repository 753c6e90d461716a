package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"conventionhub/internal/domain"
)

type conferenceRepository struct {
	DB *sql.DB
}

// NewConferenceRepository returns a ConferenceRepository over postgres.
// Snapshots span six tables (conferences, conference_roles, rooms, events,
// event_speakers, event_attendees); Create and Save replace all child rows
// inside one transaction so a stored snapshot is always internally
// consistent. Room bookings are not stored: they are derived from events on
// restore.
func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{DB: db}
}

func (r *conferenceRepository) Create(ctx context.Context, state *domain.ConferenceState) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO conferences (id, name, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, query, state.ID, state.Name, state.Time.Start, state.Time.End, state.CreatedAt, state.UpdatedAt); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, state); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *conferenceRepository) Save(ctx context.Context, state *domain.ConferenceState) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE conferences
		SET name = $2, starts_at = $3, ends_at = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, state.ID, state.Name, state.Time.Start, state.Time.End, state.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	if err := deleteChildren(ctx, tx, state.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, state); err != nil {
		return err
	}
	return tx.Commit()
}

func insertChildren(ctx context.Context, tx *sql.Tx, state *domain.ConferenceState) error {
	for _, a := range state.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conference_roles (conference_id, user_id, role) VALUES ($1, $2, $3)`,
			state.ID, a.UserID, string(a.Role)); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
	}
	for _, rm := range state.Rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, conference_id, location, capacity) VALUES ($1, $2, $3, $4)`,
			rm.ID, state.ID, rm.Location, rm.Capacity); err != nil {
			return fmt.Errorf("insert room: %w", err)
		}
	}
	for _, ev := range state.Events {
		var roomID any
		if ev.RoomID != nil {
			roomID = *ev.RoomID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, conference_id, name, starts_at, ends_at, room_id, capacity) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ev.ID, state.ID, ev.Name, ev.Time.Start, ev.Time.End, roomID, ev.Capacity); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		for _, s := range ev.SpeakerIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO event_speakers (event_id, user_id) VALUES ($1, $2)`,
				ev.ID, s); err != nil {
				return fmt.Errorf("insert speaker: %w", err)
			}
		}
		for _, a := range ev.AttendeeIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2)`,
				ev.ID, a); err != nil {
				return fmt.Errorf("insert attendee: %w", err)
			}
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, confID uuid.UUID) error {
	queries := []string{
		`DELETE FROM event_speakers WHERE event_id IN (SELECT id FROM events WHERE conference_id = $1)`,
		`DELETE FROM event_attendees WHERE event_id IN (SELECT id FROM events WHERE conference_id = $1)`,
		`DELETE FROM events WHERE conference_id = $1`,
		`DELETE FROM rooms WHERE conference_id = $1`,
		`DELETE FROM conference_roles WHERE conference_id = $1`,
	}
	for _, q := range queries {
		if _, err := tx.ExecContext(ctx, q, confID); err != nil {
			return err
		}
	}
	return nil
}

func (r *conferenceRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ConferenceState, error) {
	state := &domain.ConferenceState{}
	query := `
		SELECT id, name, starts_at, ends_at, created_at, updated_at
		FROM conferences
		WHERE id = $1
	`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&state.ID, &state.Name, &state.Time.Start, &state.Time.End, &state.CreatedAt, &state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if state.Roles, err = r.loadRoles(ctx, id); err != nil {
		return nil, err
	}
	if state.Rooms, err = r.loadRooms(ctx, id); err != nil {
		return nil, err
	}
	if state.Events, err = r.loadEvents(ctx, id); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *conferenceRepository) loadRoles(ctx context.Context, confID uuid.UUID) ([]domain.RoleAssignment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT user_id, role FROM conference_roles WHERE conference_id = $1 ORDER BY role, user_id`, confID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	var out []domain.RoleAssignment
	for rows.Next() {
		var a domain.RoleAssignment
		var role string
		if err := rows.Scan(&a.UserID, &role); err != nil {
			return nil, err
		}
		a.Role = domain.Role(role)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *conferenceRepository) loadRooms(ctx context.Context, confID uuid.UUID) ([]*domain.Room, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, location, capacity FROM rooms WHERE conference_id = $1 ORDER BY location, id`, confID)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	var out []*domain.Room
	for rows.Next() {
		rm := &domain.Room{}
		if err := rows.Scan(&rm.ID, &rm.Location, &rm.Capacity); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *conferenceRepository) loadEvents(ctx context.Context, confID uuid.UUID) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, starts_at, ends_at, room_id, capacity FROM events WHERE conference_id = $1 ORDER BY starts_at, id`, confID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	var out []*domain.Event
	byID := make(map[uuid.UUID]*domain.Event)
	for rows.Next() {
		ev := &domain.Event{SpeakerIDs: []uuid.UUID{}, AttendeeIDs: []uuid.UUID{}}
		var roomID sql.Null[uuid.UUID]
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Time.Start, &ev.Time.End, &roomID, &ev.Capacity); err != nil {
			return nil, err
		}
		if roomID.Valid {
			id := roomID.V
			ev.RoomID = &id
		}
		out = append(out, ev)
		byID[ev.ID] = ev
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	assignRows, err := r.DB.QueryContext(ctx, `
		SELECT s.event_id, s.user_id, 'speaker' AS kind
		FROM event_speakers s JOIN events e ON e.id = s.event_id
		WHERE e.conference_id = $1
		UNION ALL
		SELECT a.event_id, a.user_id, 'attendee' AS kind
		FROM event_attendees a JOIN events e ON e.id = a.event_id
		WHERE e.conference_id = $1
		ORDER BY event_id, kind, user_id`, confID)
	if err != nil {
		return nil, fmt.Errorf("load event assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var eventID, userID uuid.UUID
		var kind string
		if err := assignRows.Scan(&eventID, &userID, &kind); err != nil {
			return nil, err
		}
		ev, ok := byID[eventID]
		if !ok {
			continue
		}
		if kind == "speaker" {
			ev.SpeakerIDs = append(ev.SpeakerIDs, userID)
		} else {
			ev.AttendeeIDs = append(ev.AttendeeIDs, userID)
		}
	}
	return out, assignRows.Err()
}

func (r *conferenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteChildren(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conferences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *conferenceRepository) List(ctx context.Context) ([]*domain.ConferenceSummary, error) {
	query := `
		SELECT c.id, c.name, c.starts_at, c.ends_at,
			(SELECT COUNT(*) FROM conference_roles r WHERE r.conference_id = c.id AND r.role = 'organizer') AS organizers,
			(SELECT COUNT(*) FROM rooms rm WHERE rm.conference_id = c.id) AS rooms,
			(SELECT COUNT(*) FROM events e WHERE e.conference_id = c.id) AS events
		FROM conferences c
		ORDER BY c.starts_at, c.id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ConferenceSummary
	for rows.Next() {
		s := &domain.ConferenceSummary{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Time.Start, &s.Time.End, &s.Organizers, &s.Rooms, &s.Events); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
