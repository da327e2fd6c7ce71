package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

type EventController struct {
	Logger *slog.Logger
	Events domain.EventService
}

func NewEventController(logger *slog.Logger, events domain.EventService) *EventController {
	return &EventController{
		Logger: logger,
		Events: events,
	}
}

func (c *EventController) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.IsClientError(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// CreateEventRequest is the request body for POST /events. Date must be RFC3339
// and in the future.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Date == "" {
		errs = append(errs, "date is required")
	} else if _, err := time.Parse(time.RFC3339, c.Date); err != nil {
		errs = append(errs, "date must be RFC3339")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event with the authenticated user as organizer. Accepts JSON, or multipart/form-data with the same field names plus an optional image file. Organizer or admin role required; date must be in the future; names are unique among active events.
// @Tags events
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	var image *domain.AssetUpload
	if helpers.IsMultipart(r) {
		up, err := helpers.ReadImageUpload(r)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		image = up
		req = CreateEventRequest{
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
			Date:        r.FormValue("date"),
		}
		if errs := req.Validate(); len(errs) > 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
			return
		}
	} else if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	date, _ := time.Parse(time.RFC3339, req.Date)

	event, err := c.Events.Create(r.Context(), domain.CreateEventInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Date:        date,
	}, userID, image)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns a single event. No authentication required.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListEventsResponse is the data payload for GET /events (200).
type ListEventsResponse struct {
	Items      []*domain.Event  `json:"items"`
	Pagination helpers.PageMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns a paginated list of events. Optional filters: name (substring, case-sensitive), status (ACTIVE or INACTIVE), from and to (RFC3339 date bounds). Use limit and cursor query params for pagination; pass the returned next_cursor to fetch the following page. No authentication required.
// @Tags events
// @Produce json
// @Param name query string false "Filter by name substring"
// @Param status query string false "Filter by status (ACTIVE or INACTIVE)"
// @Param from query string false "Events on or after this RFC3339 time"
// @Param to query string false "Events on or before this RFC3339 time"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad filter or cursor)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, errs := eventFilterFromQuery(r)
	if len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	events, next, err := c.Events.List(r.Context(), filter, helpers.ParsePage(r))
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      events,
		Pagination: helpers.PageMeta{Count: len(events), NextCursor: next},
	})
}

// eventFilterFromQuery parses the name, status, from, and to query parameters.
func eventFilterFromQuery(r *http.Request) (domain.EventFilter, []string) {
	var filter domain.EventFilter
	var errs []string
	q := r.URL.Query()
	if name := strings.TrimSpace(q.Get("name")); name != "" {
		filter.Name = &name
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.EventStatus(strings.ToUpper(raw))
		if status != domain.EventStatusActive && status != domain.EventStatusInactive {
			errs = append(errs, "status must be ACTIVE or INACTIVE")
		} else {
			filter.Status = &status
		}
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errs = append(errs, "from must be RFC3339")
		} else {
			filter.From = &t
		}
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errs = append(errs, "to must be RFC3339")
		} else {
			filter.To = &t
		}
	}
	return filter, errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All
// fields optional; omitted fields are unchanged. Organizer reassignment is
// admin-only.
type UpdateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	OrganizerID *string `json:"organizer_id"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Date != nil {
		if _, err := time.Parse(time.RFC3339, *u.Date); err != nil {
			errs = append(errs, "date must be RFC3339")
		}
	}
	if u.OrganizerID != nil && strings.TrimSpace(*u.OrganizerID) == "" {
		errs = append(errs, "organizer_id cannot be empty")
	}
	return errs
}

// UpdateEventSuccessResponse is the success response envelope for PATCH /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Updates name, description, date, organizer, or image. Only the organizer or an admin can update. Accepts JSON, or multipart/form-data with the same field names plus an optional image file that replaces the current one. Optional fields omitted from body are unchanged.
// @Tags events
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
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
	var req UpdateEventRequest
	var image *domain.AssetUpload
	if helpers.IsMultipart(r) {
		up, err := helpers.ReadImageUpload(r)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		image = up
		req = updateEventFromForm(r)
		if errs := req.Validate(); len(errs) > 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
			return
		}
	} else if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	in := domain.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		OrganizerID: req.OrganizerID,
	}
	if req.Date != nil {
		d, _ := time.Parse(time.RFC3339, *req.Date)
		in.Date = &d
	}
	event, err := c.Events.Update(r.Context(), eventID, in, userID, image)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// updateEventFromForm reads the optional update fields from a parsed multipart
// form. A field is treated as set only when it was present in the form.
func updateEventFromForm(r *http.Request) UpdateEventRequest {
	var req UpdateEventRequest
	form := r.MultipartForm.Value
	if vs, ok := form["name"]; ok && len(vs) > 0 {
		req.Name = &vs[0]
	}
	if vs, ok := form["description"]; ok && len(vs) > 0 {
		req.Description = &vs[0]
	}
	if vs, ok := form["date"]; ok && len(vs) > 0 {
		req.Date = &vs[0]
	}
	if vs, ok := form["organizer_id"]; ok && len(vs) > 0 {
		req.OrganizerID = &vs[0]
	}
	return req
}

// DeactivateEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeactivateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeactivateEvent godoc
// @Summary Deactivate an event
// @Description Marks the event INACTIVE and notifies active registrants. Only the organizer or an admin can deactivate. Deactivating an already inactive event is rejected.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeactivateEventSuccessResponse "data contains the deactivated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (already inactive)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeactivateEvent(w http.ResponseWriter, r *http.Request) {
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
	event, err := c.Events.Deactivate(r.Context(), eventID, userID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
