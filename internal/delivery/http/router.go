package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conventionhub/internal/delivery/http/controllers"
	"conventionhub/internal/delivery/http/middleware"
	"conventionhub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Everything except signup, login, health, and swagger requires a Bearer token.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	auth *controllers.AuthController,
	conferences *controllers.ConferenceController,
	rooms *controllers.RoomController,
	events *controllers.EventController,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", auth.SignUp)
	mux.HandleFunc("POST /auth/login", auth.Login)
	mux.HandleFunc("GET /auth/me", requireAuth(auth.Me))

	// Conferences
	mux.HandleFunc("POST /conferences", requireAuth(conferences.CreateConference))
	mux.HandleFunc("GET /conferences", requireAuth(conferences.ListConferences))
	mux.HandleFunc("GET /conferences/{confID}", requireAuth(conferences.GetConference))
	mux.HandleFunc("DELETE /conferences/{confID}", requireAuth(conferences.DeleteConference))

	// Membership and roles
	mux.HandleFunc("GET /conferences/{confID}/users", requireAuth(conferences.ListUsers))
	mux.HandleFunc("PUT /conferences/{confID}/users/{userID}/roles", requireAuth(conferences.GrantRole))
	mux.HandleFunc("DELETE /conferences/{confID}/users/{userID}/roles/{role}", requireAuth(conferences.RevokeRole))
	mux.HandleFunc("DELETE /conferences/{confID}/users/{userID}", requireAuth(conferences.RemoveUser))
	mux.HandleFunc("POST /conferences/{confID}/invitations", requireAuth(conferences.InviteAttendee))

	// Rooms
	mux.HandleFunc("POST /conferences/{confID}/rooms", requireAuth(rooms.CreateRoom))
	mux.HandleFunc("GET /conferences/{confID}/rooms", requireAuth(rooms.ListRooms))
	mux.HandleFunc("PATCH /conferences/{confID}/rooms/{roomID}", requireAuth(rooms.UpdateRoom))
	mux.HandleFunc("DELETE /conferences/{confID}/rooms/{roomID}", requireAuth(rooms.DeleteRoom))

	// Events
	mux.HandleFunc("POST /conferences/{confID}/events", requireAuth(events.CreateEvent))
	mux.HandleFunc("GET /conferences/{confID}/events", requireAuth(events.ListEvents))
	mux.HandleFunc("PATCH /conferences/{confID}/events/{eventID}", requireAuth(events.RescheduleEvent))
	mux.HandleFunc("DELETE /conferences/{confID}/events/{eventID}", requireAuth(events.DeleteEvent))
	mux.HandleFunc("POST /conferences/{confID}/events/{eventID}/attendees/{userID}", requireAuth(events.RegisterAttendee))
	mux.HandleFunc("DELETE /conferences/{confID}/events/{eventID}/attendees/{userID}", requireAuth(events.UnregisterAttendee))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
