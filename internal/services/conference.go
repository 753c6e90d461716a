package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"conventionhub/internal/convention"
	"conventionhub/internal/domain"
)

// conferenceService fronts the convention core. It keeps live aggregates in
// memory (one lock per conference, inside convention.Conference) and writes
// the full snapshot through the repository after every successful mutation.
// When a save fails the cached aggregate is evicted so the next call reloads
// the last persisted state instead of drifting from storage.
type conferenceService struct {
	repo           domain.ConferenceRepository
	directory      domain.UserDirectory
	email          domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration

	mu    sync.Mutex
	live  map[uuid.UUID]*convention.Conference
	saves map[uuid.UUID]*sync.Mutex
}

// NewConferenceService creates a ConferenceService backed by the given
// repository, user directory, and email service.
func NewConferenceService(repo domain.ConferenceRepository, directory domain.UserDirectory, email domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.ConferenceService {
	return &conferenceService{
		repo:           repo,
		directory:      directory,
		email:          email,
		logger:         logger,
		contextTimeout: timeout,
		live:           make(map[uuid.UUID]*convention.Conference),
		saves:          make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *conferenceService) getLive(ctx context.Context, id uuid.UUID) (*convention.Conference, error) {
	s.mu.Lock()
	if conf, ok := s.live[id]; ok {
		s.mu.Unlock()
		return conf, nil
	}
	s.mu.Unlock()

	state, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	conf, err := convention.Restore(state)
	if err != nil {
		return nil, fmt.Errorf("restore conference: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[id]; ok {
		return existing, nil
	}
	s.live[id] = conf
	return conf, nil
}

func (s *conferenceService) evict(id uuid.UUID) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}

// saveLock returns the save mutex for one conference, creating it on first
// use. Entries are kept for the life of the service: dropping one while a
// save holds it would let a later save run unserialized.
func (s *conferenceService) saveLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.saves[id]
	if !ok {
		mu = &sync.Mutex{}
		s.saves[id] = mu
	}
	return mu
}

// persist writes the aggregate snapshot through to storage. Snapshot and
// save run under a per-conference save lock: a snapshot taken inside the
// lock reflects every mutation whose save completed before it, so a stale
// snapshot can never overwrite a newer persisted state. On failure the
// cached aggregate is evicted; the in-memory mutation is discarded and the
// next access reloads the last persisted state.
func (s *conferenceService) persist(ctx context.Context, conf *convention.Conference) error {
	mu := s.saveLock(conf.ID())
	mu.Lock()
	defer mu.Unlock()
	if err := s.repo.Save(ctx, conf.State()); err != nil {
		s.evict(conf.ID())
		return fmt.Errorf("save conference: %w", err)
	}
	return nil
}

func (s *conferenceService) requireUser(ctx context.Context, id uuid.UUID) error {
	exists, err := s.directory.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if !exists {
		return fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	}
	return nil
}

func (s *conferenceService) Create(ctx context.Context, actor domain.Actor, name string, tr domain.TimeRange) (*domain.ConferenceSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, actor.UserID); err != nil {
		return nil, err
	}
	conf, err := convention.New(name, tr, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, conf.State()); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}
	s.mu.Lock()
	s.live[conf.ID()] = conf
	s.mu.Unlock()
	return conf.Summary(), nil
}

func (s *conferenceService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.ConferenceState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	return conf.State(), nil
}

func (s *conferenceService) List(ctx context.Context) ([]*domain.ConferenceSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	summaries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	if summaries == nil {
		summaries = []*domain.ConferenceSummary{}
	}
	return summaries, nil
}

func (s *conferenceService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, id)
	if err != nil {
		return err
	}
	if err := conf.Delete(actor); err != nil {
		return err
	}
	s.evict(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete conference: %w", err)
	}
	s.logger.InfoContext(ctx, "conference deleted", "conference_id", id, "actor", actor.UserID)
	return nil
}

func (s *conferenceService) GrantRole(ctx context.Context, actor domain.Actor, confID, userID uuid.UUID, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return err
	}
	if err := conf.GrantRole(actor, userID, role); err != nil {
		return err
	}
	return s.persist(ctx, conf)
}

func (s *conferenceService) RevokeRole(ctx context.Context, actor domain.Actor, confID, userID uuid.UUID, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return err
	}
	if err := conf.RevokeRole(actor, userID, role); err != nil {
		return err
	}
	return s.persist(ctx, conf)
}

func (s *conferenceService) RemoveUser(ctx context.Context, actor domain.Actor, confID, userID uuid.UUID) (*domain.RemovedUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	removed, err := conf.RemoveUser(actor, userID)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, conf); err != nil {
		return nil, err
	}
	if len(removed.OrphanedEventIDs) > 0 {
		s.logger.WarnContext(ctx, "removed user left events without this speaker",
			"conference_id", confID, "user_id", userID, "event_ids", removed.OrphanedEventIDs)
	}
	return removed, nil
}

func (s *conferenceService) ListUsers(ctx context.Context, actor domain.Actor, confID uuid.UUID, role domain.Role) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	return conf.UsersByRole(role), nil
}

func (s *conferenceService) CreateRoom(ctx context.Context, actor domain.Actor, confID uuid.UUID, location string, capacity int) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	rm, err := conf.CreateRoom(actor, location, capacity)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, conf); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *conferenceService) UpdateRoom(ctx context.Context, actor domain.Actor, confID, roomID uuid.UUID, location *string, capacity *int) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	rm, err := conf.UpdateRoom(actor, roomID, location, capacity)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, conf); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *conferenceService) DeleteRoom(ctx context.Context, actor domain.Actor, confID, roomID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return err
	}
	if err := conf.DeleteRoom(actor, roomID); err != nil {
		return err
	}
	return s.persist(ctx, conf)
}

func (s *conferenceService) ListRooms(ctx context.Context, actor domain.Actor, confID uuid.UUID) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	return conf.Rooms(), nil
}

func (s *conferenceService) CreateEvent(ctx context.Context, actor domain.Actor, confID uuid.UUID, params domain.CreateEventParams) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	ev, err := conf.CreateEvent(actor, params)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, conf); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *conferenceService) RescheduleEvent(ctx context.Context, actor domain.Actor, confID, eventID uuid.UUID, newTime domain.TimeRange, newRoomID *uuid.UUID) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	ev, err := conf.RescheduleEvent(actor, eventID, newTime, newRoomID)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, conf); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *conferenceService) DeleteEvent(ctx context.Context, actor domain.Actor, confID, eventID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return err
	}
	if err := conf.DeleteEvent(actor, eventID); err != nil {
		return err
	}
	return s.persist(ctx, conf)
}

func (s *conferenceService) ListEvents(ctx context.Context, actor domain.Actor, confID uuid.UUID) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return nil, err
	}
	return conf.Events(), nil
}

func (s *conferenceService) RegisterAttendee(ctx context.Context, actor domain.Actor, confID, eventID, userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return err
	}
	if err := conf.RegisterAttendee(actor, eventID, userID); err != nil {
		return err
	}
	return s.persist(ctx, conf)
}

func (s *conferenceService) UnregisterAttendee(ctx context.Context, actor domain.Actor, confID, eventID, userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return err
	}
	if err := conf.UnregisterAttendee(actor, eventID, userID); err != nil {
		return err
	}
	return s.persist(ctx, conf)
}

// InviteAttendee grants userID the attendee role and sends them an
// invitation email. A mail delivery failure does not roll back the grant;
// it is logged and the invitation can be re-sent.
func (s *conferenceService) InviteAttendee(ctx context.Context, actor domain.Actor, confID, userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	conf, err := s.getLive(ctx, confID)
	if err != nil {
		return err
	}
	if err := conf.GrantRole(actor, userID, domain.RoleAttendee); err != nil {
		return err
	}
	if err := s.persist(ctx, conf); err != nil {
		return err
	}

	if s.email == nil {
		return nil
	}
	addr, err := s.directory.Email(ctx, userID)
	if err != nil || addr == "" {
		s.logger.WarnContext(ctx, "invitation email skipped: no address", "user_id", userID, "err", err)
		return nil
	}
	name, _ := s.directory.DisplayName(ctx, userID)
	organizerName, _ := s.directory.DisplayName(ctx, actor.UserID)
	data := &domain.InvitationEmailData{
		Email:          addr,
		Name:           name,
		OrganizerName:  organizerName,
		ConferenceName: conf.State().Name,
	}
	if err := s.email.SendInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "user_id", userID, "err", err)
	}
	return nil
}
