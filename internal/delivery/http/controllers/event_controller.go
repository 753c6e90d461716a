package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"conventionhub/internal/delivery/http/helpers"
	"conventionhub/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.ConferenceService
}

func NewEventController(logger *slog.Logger, svc domain.ConferenceService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /conferences/{confID}/events.
type CreateEventRequest struct {
	Name       string      `json:"name"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	RoomID     *uuid.UUID  `json:"room_id"`
	Capacity   int         `json:"capacity"`
	SpeakerIDs []uuid.UUID `json:"speaker_ids"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Start.IsZero() || c.End.IsZero() {
		errs = append(errs, "start and end are required")
	} else if !c.Start.Before(c.End) {
		errs = append(errs, "start must be before end")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must be non-negative")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /conferences/{confID}/events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Schedule an event
// @Description Schedules an event inside the conference window. Booking the room and checking every speaker's calendar happen atomically: a conflict rejects the whole event. Capacity 0 means unlimited unless a room is assigned, in which case the room's capacity applies. Only an organizer can schedule. Requires authentication.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (outside conference window, bad range)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer, or speaker lacks role)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (conference or room)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (room or speaker double-booked)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	tr, err := domain.NewTimeRange(req.Start, req.End)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), actor, confID, domain.CreateEventParams{
		Name:       strings.TrimSpace(req.Name),
		Time:       tr,
		RoomID:     req.RoomID,
		Capacity:   req.Capacity,
		SpeakerIDs: req.SpeakerIDs,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEventsSuccessResponse is the success response envelope for GET /conferences/{confID}/events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns the conference's events sorted by start time. Any authenticated user can list. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data is an array of events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEvents(r.Context(), actor, confID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// RescheduleEventRequest is the request body for PATCH /conferences/{confID}/events/{eventID}.
// RoomID omitted or null moves the event out of any room.
type RescheduleEventRequest struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	RoomID *uuid.UUID `json:"room_id"`
}

// Validate implements Validator.
func (rr RescheduleEventRequest) Validate() []string {
	var errs []string
	if rr.Start.IsZero() || rr.End.IsZero() {
		errs = append(errs, "start and end are required")
	} else if !rr.Start.Before(rr.End) {
		errs = append(errs, "start must be before end")
	}
	return errs
}

// RescheduleEventSuccessResponse is the success response envelope for PATCH /conferences/{confID}/events/{eventID} (200).
type RescheduleEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RescheduleEvent godoc
// @Summary Reschedule an event
// @Description Moves an event to a new time and optionally a new room. Conflicts are checked against the target atomically; on any conflict the event keeps its original slot. An event may move within its own room. Only an organizer can reschedule. Requires authentication.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RescheduleEventRequest true "New schedule"
// @Success 200 {object} controllers.RescheduleEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (outside conference window, bad range)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (conference, event, or room)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (room or speaker double-booked)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/events/{eventID} [patch]
func (c *EventController) RescheduleEvent(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req RescheduleEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	tr, err := domain.NewTimeRange(req.Start, req.End)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	event, err := c.Service.RescheduleEvent(r.Context(), actor, confID, eventID, tr, req.RoomID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /conferences/{confID}/events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event and releases its room booking. Only an organizer can delete. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), actor, confID, eventID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// RegisterAttendeeSuccessResponse is the success response envelope for POST /conferences/{confID}/events/{eventID}/attendees/{userID} (200).
type RegisterAttendeeSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RegisterAttendee godoc
// @Summary Register an attendee for an event
// @Description Registers the user for the event. Users may register themselves; organizers may register anyone. The user must hold the attendee role. Full events return 409. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.RegisterAttendeeSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not self or organizer, or user lacks attendee role)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered or event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/events/{eventID}/attendees/{userID} [post]
func (c *EventController) RegisterAttendee(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.RegisterAttendee(r.Context(), actor, confID, eventID, userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "registered"})
}

// UnregisterAttendeeSuccessResponse is the success response envelope for DELETE /conferences/{confID}/events/{eventID}/attendees/{userID} (200).
type UnregisterAttendeeSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UnregisterAttendee godoc
// @Summary Unregister an attendee from an event
// @Description Removes the user's registration. Unregistering a user who is not registered is a no-op. Users may unregister themselves; organizers may unregister anyone. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.UnregisterAttendeeSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not self or organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/events/{eventID}/attendees/{userID} [delete]
func (c *EventController) UnregisterAttendee(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.UnregisterAttendee(r.Context(), actor, confID, eventID, userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "unregistered"})
}
