package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned when a user write would violate the global
// email uniqueness invariant.
var ErrDuplicateEmail = errors.New("email already in use")

// Role is an application role. Roles are immutable outside the admin-only
// update path.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleOrganizer   Role = "ORGANIZER"
	RoleParticipant Role = "PARTICIPANT"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizer, RoleParticipant:
		return true
	}
	return false
}

// User represents a platform account.
// swagger:model User
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Phone               string     `json:"phone,omitempty"`
	Role                Role       `json:"role"`
	ProfileAsset        *AssetRef  `json:"profile_image,omitempty"`
	IsActive            bool       `json:"is_active"`
	EmailValidated      bool       `json:"is_email_validated"`
	ValidationToken     string     `json:"-"`
	ValidationExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// UserFilter narrows a user listing. Role maps onto the role secondary
// index; Name is a substring match applied as a post-filter.
type UserFilter struct {
	Name *string
	Role *Role
}

// UserPatch describes a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name                *string
	Email               *string
	PasswordHash        *string
	Phone               *string
	Role                *Role
	ProfileAsset        *AssetRef
	IsActive            *bool
	EmailValidated      *bool
	ValidationToken     *string
	ValidationExpiresAt *time.Time
	ClearValidation     bool
}

// IsEmpty reports whether the patch would change nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil &&
		p.Phone == nil && p.Role == nil && p.ProfileAsset == nil &&
		p.IsActive == nil && p.EmailValidated == nil &&
		p.ValidationToken == nil && p.ValidationExpiresAt == nil &&
		!p.ClearValidation
}

// PasswordHasher handles hashing and verification of user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage. Create is guarded by
// a conditional write on the id and returns ErrConflict if it already exists.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
	List(ctx context.Context, filter UserFilter, page Page) ([]*User, string, error)
}

// CreateUserInput is the validated input for account creation.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     Role
}

// UpdateUserInput is the validated input for a partial account update.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Phone    *string
}

// UserService defines the account lifecycle.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput, image *AssetUpload) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, in UpdateUserInput, requesterID string, image *AssetUpload) (*User, error)
	Deactivate(ctx context.Context, id, requesterID string) (*User, error)
	List(ctx context.Context, filter UserFilter, page Page) ([]*User, string, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	ValidateEmail(ctx context.Context, email, token string) (*User, error)
}
