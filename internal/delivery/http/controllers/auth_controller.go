package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"eventdesk/internal/delivery/http/helpers"
	"eventdesk/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type AuthController struct {
	Logger *slog.Logger
	Users  domain.UserService
}

func NewAuthController(logger *slog.Logger, users domain.UserService) *AuthController {
	return &AuthController{
		Logger: logger,
		Users:  users,
	}
}

func (c *AuthController) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.IsClientError(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// SignupRequest is the request body for POST /auth/signup. Role defaults to
// PARTICIPANT when omitted.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (s SignupRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if s.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(s.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if s.Role != "" && !domain.Role(strings.ToUpper(s.Role)).Valid() {
		errs = append(errs, "role must be one of ADMIN, ORGANIZER, PARTICIPANT")
	}
	return errs
}

// SignupSuccessResponse is the success response envelope for POST /auth/signup (201).
type SignupSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Signup godoc
// @Summary Create a new account
// @Description Creates an account and sends a welcome email with a validation link. Accepts JSON, or multipart/form-data with the same field names plus an optional image file for the profile picture. Role defaults to PARTICIPANT.
// @Tags auth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param body body SignupRequest true "Account data"
// @Success 201 {object} controllers.SignupSuccessResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	var image *domain.AssetUpload
	if helpers.IsMultipart(r) {
		up, err := helpers.ReadImageUpload(r)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		image = up
		req = SignupRequest{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
			Phone:    r.FormValue("phone"),
			Role:     r.FormValue("role"),
		}
		if errs := req.Validate(); len(errs) > 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
			return
		}
	} else if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Users.Create(r.Context(), domain.CreateUserInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Phone:    strings.TrimSpace(req.Phone),
		Role:     domain.Role(strings.ToUpper(req.Role)),
	}, image)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if l.Email == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the data payload for POST /auth/login (200).
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// LoginSuccessResponse is the success response envelope for POST /auth/login (200).
type LoginSuccessResponse struct {
	Data  LoginResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and returns a Bearer token. Deactivated accounts cannot log in.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} controllers.LoginSuccessResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (bad credentials or deactivated)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// ValidateEmailRequest is the request body for POST /auth/validate-email.
type ValidateEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Validate implements Validator.
func (v ValidateEmailRequest) Validate() []string {
	var errs []string
	if v.Email == "" {
		errs = append(errs, "email is required")
	}
	if v.Token == "" {
		errs = append(errs, "token is required")
	}
	return errs
}

// ValidateEmailSuccessResponse is the success response envelope for POST /auth/validate-email (200).
type ValidateEmailSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ValidateEmail godoc
// @Summary Validate an email address
// @Description Confirms the validation token sent in the welcome email and marks the account's email as validated.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ValidateEmailRequest true "Email and validation token"
// @Success 200 {object} controllers.ValidateEmailSuccessResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad or expired token)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already validated)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/validate-email [post]
func (c *AuthController) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req ValidateEmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Users.ValidateEmail(r.Context(), req.Email, req.Token)
	if err != nil {
		c.handleError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
