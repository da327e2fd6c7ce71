package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/domain"
)

type UserController struct {
	Logger *slog.Logger
	Users  domain.UserService
}

func NewUserController(logger *slog.Logger, users domain.UserService) *UserController {
	return &UserController{
		Logger: logger,
		Users:  users,
	}
}

func (c *UserController) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.IsClientError(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// GetUserSuccessResponse is the success response envelope for GET /users/me and GET /users/{userID} (200).
type GetUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetMe godoc
// @Summary Get the current user
// @Description Returns the authenticated user's account. Requires Bearer token.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.GetUserSuccessResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Users.GetByID(r.Context(), userID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// GetUser godoc
// @Summary Get a user by ID
// @Description Returns a user's account. Users can read their own account; admins can read any. Requires authentication.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.GetUserSuccessResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID} [get]
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("userID")
	if targetID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	requester, err := c.Users.GetByID(r.Context(), requesterID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	if d := domain.Authorize(requester, domain.ActionReadUser, targetID); !d.Allowed {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, d.Reason)
		return
	}
	user, err := c.Users.GetByID(r.Context(), targetID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ListUsersResponse is the data payload for GET /users (200).
type ListUsersResponse struct {
	Items      []*domain.User   `json:"items"`
	Pagination helpers.PageMeta `json:"pagination"`
}

// ListUsersSuccessResponse is the success response envelope for GET /users (200).
type ListUsersSuccessResponse struct {
	Data  ListUsersResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListUsers godoc
// @Summary List users
// @Description Returns a paginated list of users. Admin only. Optional filters: name (substring, case-sensitive) and role. Use limit and cursor query params for pagination.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param name query string false "Filter by name substring"
// @Param role query string false "Filter by role (ADMIN, ORGANIZER, PARTICIPANT)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} controllers.ListUsersSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad filter or cursor)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not admin)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	requester, err := c.Users.GetByID(r.Context(), requesterID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	if requester.Role != domain.RoleAdmin {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "admin role required")
		return
	}

	var filter domain.UserFilter
	q := r.URL.Query()
	if name := strings.TrimSpace(q.Get("name")); name != "" {
		filter.Name = &name
	}
	if raw := q.Get("role"); raw != "" {
		role := domain.Role(strings.ToUpper(raw))
		if !role.Valid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "role must be one of ADMIN, ORGANIZER, PARTICIPANT")
			return
		}
		filter.Role = &role
	}

	users, next, err := c.Users.List(r.Context(), filter, helpers.ParsePage(r))
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListUsersResponse{
		Items:      users,
		Pagination: helpers.PageMeta{Count: len(users), NextCursor: next},
	})
}

// UpdateUserRequest is the request body for PATCH /users/{userID}. All fields
// optional; omitted fields are unchanged. Changing email resets email
// validation and sends a fresh validation link.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
}

// Validate implements Validator.
func (u UpdateUserRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Email != nil && !emailRegex.MatchString(strings.TrimSpace(*u.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if u.Password != nil && len(*u.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	return errs
}

// UpdateUserSuccessResponse is the success response envelope for PATCH /users/{userID} (200).
type UpdateUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateUser godoc
// @Summary Update a user
// @Description Updates name, email, password, phone, or profile image. Users can update their own account; admins can update any. Accepts JSON, or multipart/form-data with the same field names plus an optional image file that replaces the current one. Optional fields omitted from body are unchanged.
// @Tags users
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Param body body UpdateUserRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateUserSuccessResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID} [patch]
func (c *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("userID")
	if targetID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateUserRequest
	var image *domain.AssetUpload
	if helpers.IsMultipart(r) {
		up, err := helpers.ReadImageUpload(r)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		image = up
		req = updateUserFromForm(r)
		if errs := req.Validate(); len(errs) > 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
			return
		}
	} else if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Users.Update(r.Context(), targetID, domain.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, requesterID, image)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// updateUserFromForm reads the optional update fields from a parsed multipart
// form. A field is treated as set only when it was present in the form.
func updateUserFromForm(r *http.Request) UpdateUserRequest {
	var req UpdateUserRequest
	form := r.MultipartForm.Value
	if vs, ok := form["name"]; ok && len(vs) > 0 {
		req.Name = &vs[0]
	}
	if vs, ok := form["email"]; ok && len(vs) > 0 {
		req.Email = &vs[0]
	}
	if vs, ok := form["password"]; ok && len(vs) > 0 {
		req.Password = &vs[0]
	}
	if vs, ok := form["phone"]; ok && len(vs) > 0 {
		req.Phone = &vs[0]
	}
	return req
}

// DeactivateUserSuccessResponse is the success response envelope for DELETE /users/{userID} (200).
type DeactivateUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeactivateUser godoc
// @Summary Deactivate a user
// @Description Marks the account inactive. Users can deactivate their own account; admins can deactivate any. Deactivating an already inactive account is rejected.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.DeactivateUserSuccessResponse "data contains the deactivated user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already inactive)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID} [delete]
func (c *UserController) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("userID")
	if targetID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Users.Deactivate(r.Context(), targetID, requesterID)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
