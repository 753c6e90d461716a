// Package controllers holds the HTTP handlers. Each controller wraps one
// service, decodes and validates request bodies, and maps domain errors to
// HTTP status codes: ErrInvalidInput is 400, ErrNotFound and ErrUserNotFound
// are 404, ErrForbidden is 403, and the conflict family (double-bookings,
// capacity, lone organizer) is 409.
package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"conventionhub/internal/delivery/http/helpers"
	"conventionhub/internal/delivery/http/middleware"
	"conventionhub/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// StatusResponse is the data payload for operations that return no entity.
type StatusResponse struct {
	Status string `json:"status"`
}

// pathUUID extracts and parses a UUID path parameter. On failure it writes a
// 400 JSON error and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// requireActor returns the authenticated actor from the request context. On
// failure it writes a 401 JSON error and returns false.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.Actor{}, false
	}
	return actor, true
}

// writeServiceError maps a service error to the HTTP response. Unrecognized
// errors are logged and returned as 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConferenceDeleted):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case domain.IsConflict(err):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
