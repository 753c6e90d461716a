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

type ConferenceController struct {
	Logger  *slog.Logger
	Service domain.ConferenceService
}

func NewConferenceController(logger *slog.Logger, svc domain.ConferenceService) *ConferenceController {
	return &ConferenceController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateConferenceRequest is the request body for POST /conferences.
type CreateConferenceRequest struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate implements Validator.
func (c CreateConferenceRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Start.IsZero() || c.End.IsZero() {
		errs = append(errs, "start and end are required")
	} else if !c.Start.Before(c.End) {
		errs = append(errs, "start must be before end")
	}
	return errs
}

// CreateConferenceSuccessResponse is the success response envelope for POST /conferences (201).
type CreateConferenceSuccessResponse struct {
	Data  *domain.ConferenceSummary `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// CreateConference godoc
// @Summary Create a conference
// @Description Creates a conference with the given name and time range. The authenticated user becomes its first organizer.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateConferenceRequest true "Conference data"
// @Success 201 {object} controllers.CreateConferenceSuccessResponse "data contains the conference summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [post]
func (c *ConferenceController) CreateConference(w http.ResponseWriter, r *http.Request) {
	var req CreateConferenceRequest
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
	summary, err := c.Service.Create(r.Context(), actor, strings.TrimSpace(req.Name), tr)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, summary)
}

// ListConferencesSuccessResponse is the success response envelope for GET /conferences (200).
type ListConferencesSuccessResponse struct {
	Data  []*domain.ConferenceSummary `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListConferences godoc
// @Summary List conferences
// @Description Returns summaries of all conferences. Requires authentication.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListConferencesSuccessResponse "data is an array of conference summaries"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [get]
func (c *ConferenceController) ListConferences(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	list, err := c.Service.List(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []*domain.ConferenceSummary{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// GetConferenceSuccessResponse is the success response envelope for GET /conferences/{confID} (200).
type GetConferenceSuccessResponse struct {
	Data  *domain.ConferenceState `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// GetConference godoc
// @Summary Get a conference
// @Description Returns the full conference state: roles, rooms, and events. Any authenticated user can read it. Requires authentication.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Success 200 {object} controllers.GetConferenceSuccessResponse "data contains the conference state"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID} [get]
func (c *ConferenceController) GetConference(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	state, err := c.Service.Get(r.Context(), actor, confID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, state)
}

// DeleteConferenceSuccessResponse is the success response envelope for DELETE /conferences/{confID} (200).
type DeleteConferenceSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteConference godoc
// @Summary Delete a conference
// @Description Deletes the conference and everything inside it: roles, rooms, events, registrations. Only an organizer can delete. Requires authentication.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Success 200 {object} controllers.DeleteConferenceSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID} [delete]
func (c *ConferenceController) DeleteConference(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), actor, confID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// RoleRequest is the request body for granting or revoking a role.
type RoleRequest struct {
	Role string `json:"role"`
}

// Validate implements Validator.
func (rr RoleRequest) Validate() []string {
	if _, err := domain.ParseRole(rr.Role); err != nil {
		return []string{"role must be one of organizer, speaker, attendee"}
	}
	return nil
}

// GrantRoleSuccessResponse is the success response envelope for PUT /conferences/{confID}/users/{userID}/roles (200).
type GrantRoleSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GrantRole godoc
// @Summary Grant a role to a user
// @Description Grants the given role to the user in the conference. Granting a role the user already holds is a no-op. Only an organizer can grant. Requires authentication.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Param body body RoleRequest true "Role to grant"
// @Success 200 {object} controllers.GrantRoleSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/users/{userID}/roles [put]
func (c *ConferenceController) GrantRole(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	var req RoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	role, _ := domain.ParseRole(req.Role)
	if err := c.Service.GrantRole(r.Context(), actor, confID, userID, role); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "granted"})
}

// RevokeRoleSuccessResponse is the success response envelope for DELETE /conferences/{confID}/users/{userID}/roles/{role} (200).
type RevokeRoleSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RevokeRole godoc
// @Summary Revoke a role from a user
// @Description Revokes the given role from the user. Revoking a role the user does not hold returns 404. Revoking the last organizer returns 409. Only an organizer can revoke. Requires authentication.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Param role path string true "Role name (organizer, speaker, attendee)"
// @Success 200 {object} controllers.RevokeRoleSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (role not held)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (last organizer)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/users/{userID}/roles/{role} [delete]
func (c *ConferenceController) RevokeRole(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	role, err := domain.ParseRole(r.PathValue("role"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "role must be one of organizer, speaker, attendee")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.RevokeRole(r.Context(), actor, confID, userID, role); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "revoked"})
}

// RemoveUserSuccessResponse is the success response envelope for DELETE /conferences/{confID}/users/{userID} (200).
type RemoveUserSuccessResponse struct {
	Data  *domain.RemovedUser `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// RemoveUser godoc
// @Summary Remove a user from a conference
// @Description Removes all of the user's roles and event registrations. Events where the user was the sole speaker keep their slot and are reported as orphaned. Removing the last organizer returns 409. Only an organizer can remove. Requires authentication.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.RemoveUserSuccessResponse "data contains the removed user and orphaned event IDs"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (not a member)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (last organizer)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/users/{userID} [delete]
func (c *ConferenceController) RemoveUser(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
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
	removed, err := c.Service.RemoveUser(r.Context(), actor, confID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, removed)
}

// ListUsersSuccessResponse is the success response envelope for GET /conferences/{confID}/users (200).
type ListUsersSuccessResponse struct {
	Data  []uuid.UUID       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListUsers godoc
// @Summary List users holding a role
// @Description Returns the IDs of users holding the role given in the required role query parameter, sorted for stable output. Any authenticated user can list. Requires authentication.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param role query string true "Role name (organizer, speaker, attendee)"
// @Success 200 {object} controllers.ListUsersSuccessResponse "data is an array of user IDs"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/users [get]
func (c *ConferenceController) ListUsers(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	role, err := domain.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "role query parameter must be one of organizer, speaker, attendee")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	users, err := c.Service.ListUsers(r.Context(), actor, confID, role)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if users == nil {
		users = []uuid.UUID{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// InviteAttendeeSuccessResponse is the success response envelope for POST /conferences/{confID}/invitations (200).
type InviteAttendeeSuccessResponse struct {
	Data  StatusResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// InviteAttendeeRequest is the request body for POST /conferences/{confID}/invitations.
type InviteAttendeeRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

// Validate implements Validator.
func (i InviteAttendeeRequest) Validate() []string {
	if i.UserID == uuid.Nil {
		return []string{"user_id is required"}
	}
	return nil
}

// InviteAttendee godoc
// @Summary Invite a user as attendee
// @Description Grants the attendee role to the user and sends an invitation email. The grant succeeds even if the email cannot be delivered. Only an organizer can invite. Requires authentication.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param confID path string true "Conference ID (UUID)"
// @Param body body InviteAttendeeRequest true "User to invite"
// @Success 200 {object} controllers.InviteAttendeeSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (conference or user)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{confID}/invitations [post]
func (c *ConferenceController) InviteAttendee(w http.ResponseWriter, r *http.Request) {
	confID, ok := pathUUID(w, r, "confID")
	if !ok {
		return
	}
	var req InviteAttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := c.Service.InviteAttendee(r.Context(), actor, confID, req.UserID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "invited"})
}
