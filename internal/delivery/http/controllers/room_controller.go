package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conventionhub/internal/delivery/http/helpers"
	"conventionhub/internal/domain"
)

type RoomController struct {
	Logger  *slog.Logger
	Service domain.ConferenceService
}

func NewRoomController(logger *slog.Logger, svc domain.ConferenceService) *RoomController {
	return &RoomController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateRoomRequest is the request body for POST /conferences/{confID}/rooms.
type CreateRoomRequest struct {
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// Validate implements Validator.
func (c CreateRoomRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if c.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	return errs
}

// CreateRoomSuccessResponse is the success response envelope for POST /conferences/{confID}/rooms (201).
type CreateRoomSuccessResponse struct {
	Data  *domain.Room      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateRoom godoc
// @Summary Create a room
// @Description Adds a room with a location and positive capacity to the conference. Only an organizer can create rooms. Requires authentication.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param body body CreateRoomRequest true "Room data"
// @Success 201 {object} controllers.CreateRoomSuccessResponse "data contains the created room"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/rooms [post]
func (c *RoomController) CreateRoom(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	var req CreateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	room, err := c.Service.CreateRoom(r.Context(), actor, confID, strings.TrimSpace(req.Location), req.Capacity)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, room)
}

// ListRoomsSuccessResponse is the success response envelope for GET /conferences/{confID}/rooms (200).
type ListRoomsSuccessResponse struct {
	Data  []*domain.Room    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListRooms godoc
// @Summary List rooms
// @Description Returns the conference's rooms with their booked intervals, sorted by location. Any authenticated user can list. Requires authentication.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Success 200 {object} controllers.ListRoomsSuccessResponse "data is an array of rooms"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/rooms [get]
func (c *RoomController) ListRooms(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rooms, err := c.Service.ListRooms(r.Context(), actor, confID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rooms)
}

// UpdateRoomRequest is the request body for PATCH /conferences/{confID}/rooms/{roomID}.
// All fields optional; omitted fields are unchanged.
type UpdateRoomRequest struct {
	Location *string `json:"location"`
	Capacity *int    `json:"capacity"`
}

// Validate implements Validator.
func (u UpdateRoomRequest) Validate() []string {
	var errs []string
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		errs = append(errs, "location cannot be empty")
	}
	if u.Capacity != nil && *u.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	return errs
}

// UpdateRoomSuccessResponse is the success response envelope for PATCH /conferences/{confID}/rooms/{roomID} (200).
type UpdateRoomSuccessResponse struct {
	Data  *domain.Room      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateRoom godoc
// @Summary Update a room
// @Description Updates a room's location and/or capacity. Shrinking capacity does not invalidate existing registrations. Only an organizer can update. Requires authentication.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param roomID path string true "Room ID (UUID)"
// @Param body body UpdateRoomRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateRoomSuccessResponse "data contains the updated room"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/rooms/{roomID} [patch]
func (c *RoomController) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	room, err := c.Service.UpdateRoom(r.Context(), actor, confID, roomID, req.Location, req.Capacity)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, room)
}

// DeleteRoomSuccessResponse is the success response envelope for DELETE /conferences/{confID}/rooms/{roomID} (200).
type DeleteRoomSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteRoom godoc
// @Summary Delete a room
// @Description Deletes a room. Fails with 409 while any event still references the room. Only an organizer can delete. Requires authentication.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param roomID path string true "Room ID (UUID)"
// @Success 200 {object} controllers.DeleteRoomSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (room in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/rooms/{roomID} [delete]
func (c *RoomController) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	roomID, ok := pathUUID(w, r, "roomID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteRoom(r.Context(), actor, confID, roomID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}
