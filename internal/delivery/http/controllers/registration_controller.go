package controllers

import (
	"log/slog"
	"net/http"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

type RegistrationController struct {
	Logger        *slog.Logger
	Registrations domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, regs domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:        logger,
		Registrations: regs,
	}
}

func (c *RegistrationController) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.IsClientError(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// CreateRegistrationSuccessResponse is the success response envelope for POST /events/{eventID}/registrations (201).
type CreateRegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CreateRegistration godoc
// @Summary Register for an event
// @Description Registers the authenticated user for the event and sends a confirmation email. The event must be active and in the future. A user can hold at most one registration per event; re-registering after cancelling is rejected.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.CreateRegistrationSuccessResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event inactive or in the past)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no such event)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Registrations.Create(r.Context(), userID, eventID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// CancelRegistrationSuccessResponse is the success response envelope for DELETE /events/{eventID}/registrations (200).
type CancelRegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CancelRegistration godoc
// @Summary Cancel a registration
// @Description Cancels the authenticated user's registration for the event and sends a cancellation email. Cancelling twice, or after the event date has passed, is rejected.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CancelRegistrationSuccessResponse "data contains the cancelled registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event already took place)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no registration)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already cancelled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [delete]
func (c *RegistrationController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Registrations.Cancel(r.Context(), userID, eventID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// ListMyRegistrationsResponse is the data payload for GET /users/me/registrations (200).
type ListMyRegistrationsResponse struct {
	Items      []*domain.RegistrationWithEvent `json:"items"`
	Pagination helpers.PageMeta                `json:"pagination"`
}

// ListMyRegistrationsSuccessResponse is the success response envelope for GET /users/me/registrations (200).
type ListMyRegistrationsSuccessResponse struct {
	Data  ListMyRegistrationsResponse `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListMyRegistrations godoc
// @Summary List the current user's active registrations
// @Description Returns the authenticated user's active registrations, newest first, each with a summary of the event and its organizer. Use limit and cursor query params for pagination.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} controllers.ListMyRegistrationsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad cursor)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/registrations [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, next, err := c.Registrations.ListByUser(r.Context(), userID, helpers.ParsePage(r))
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMyRegistrationsResponse{
		Items:      regs,
		Pagination: helpers.PageMeta{Count: len(regs), NextCursor: next},
	})
}
