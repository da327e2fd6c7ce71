package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventdesk/internal/delivery/http/controllers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Public routes: auth, event reads. Everything else requires a Bearer token.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	userController *controllers.UserController,
	registrationController *controllers.RegistrationController,
) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.Signup)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/validate-email", authController.ValidateEmail)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeactivateEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrationController.CreateRegistration))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(registrationController.CancelRegistration))
	mux.HandleFunc("GET /users/me/registrations", auth(registrationController.ListMyRegistrations))

	// Users
	mux.HandleFunc("GET /users", auth(userController.ListUsers))
	mux.HandleFunc("GET /users/me", auth(userController.GetMe))
	mux.HandleFunc("GET /users/{userID}", auth(userController.GetUser))
	mux.HandleFunc("PATCH /users/{userID}", auth(userController.UpdateUser))
	mux.HandleFunc("DELETE /users/{userID}", auth(userController.DeactivateUser))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.CORSMiddleware(middleware.LoggingMiddleware(logger, mux))
}
