package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/domain"
)

const (
	profileImagePrefix    = "profiles"
	validationTokenExpiry = 24 * time.Hour
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo       domain.UserRepository
	assets         *AssetCoordinator
	notifier       domain.Notifier
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repository, asset
// coordinator, and auth ports.
func NewUserService(
	userRepo domain.UserRepository,
	assets *AssetCoordinator,
	notifier domain.Notifier,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	clock domain.Clock,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		assets:         assets,
		notifier:       notifier,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *userService) Create(ctx context.Context, in domain.CreateUserInput, image *domain.AssetUpload) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := normalizeEmail(in.Email)
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleParticipant
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	expiresAt := now.Add(validationTokenExpiry)
	user := &domain.User{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(in.Name),
		Email:               email,
		PasswordHash:        hash,
		Phone:               strings.TrimSpace(in.Phone),
		Role:                role,
		IsActive:            true,
		ValidationToken:     uuid.NewString(),
		ValidationExpiresAt: &expiresAt,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	err = s.assets.CreateWithAsset(ctx, image, profileImagePrefix, user.ID, func(ref *domain.AssetRef) error {
		user.ProfileAsset = ref
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.notifier.UserCreated(ctx, user)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, in domain.UpdateUserInput, requesterID string, image *domain.AssetUpload) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	requester := current
	if requesterID != id {
		requester, err = s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get requester: %w", err)
		}
	}
	if d := domain.Authorize(requester, domain.ActionUpdateUser, id); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	var patch domain.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != current.Name {
			patch.Name = &name
		}
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone != current.Phone {
			patch.Phone = &phone
		}
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != current.Email {
			if !emailRegexp.MatchString(email) {
				return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
			}
			if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing.ID != id {
				return nil, domain.ErrDuplicateEmail
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("check email: %w", err)
			}
			// A changed address must be validated again.
			validated := false
			token := uuid.NewString()
			expiresAt := s.clock.Now().Add(validationTokenExpiry)
			patch.Email = &email
			patch.EmailValidated = &validated
			patch.ValidationToken = &token
			patch.ValidationExpiresAt = &expiresAt
		}
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	if patch.IsEmpty() && image == nil {
		return current, nil
	}

	var updated *domain.User
	write := func(ref *domain.AssetRef) error {
		if ref != nil {
			patch.ProfileAsset = ref
		}
		var err error
		updated, err = s.userRepo.Update(ctx, id, patch)
		return err
	}
	if image != nil {
		err = s.assets.ReplaceAsset(ctx, image, profileImagePrefix, id, current.ProfileAsset, write)
	} else {
		err = write(nil)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if patch.ValidationToken != nil {
		s.notifier.UserCreated(ctx, updated)
	}
	return updated, nil
}

func (s *userService) Deactivate(ctx context.Context, id, requesterID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !current.IsActive {
		return nil, fmt.Errorf("%w: account is already deactivated", domain.ErrConflict)
	}
	requester := current
	if requesterID != id {
		requester, err = s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get requester: %w", err)
		}
	}
	if d := domain.Authorize(requester, domain.ActionDeleteUser, id); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	inactive := false
	updated, err := s.userRepo.Update(ctx, id, domain.UserPatch{IsActive: &inactive})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("deactivate user: %w", err)
	}
	return updated, nil
}

func (s *userService) List(ctx context.Context, filter domain.UserFilter, page domain.Page) ([]*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, next, err := s.userRepo.List(ctx, filter, page)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, next, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account is deactivated", domain.ErrForbidden)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Role, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *userService) ValidateEmail(ctx context.Context, email, token string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.EmailValidated {
		return nil, fmt.Errorf("%w: email is already validated", domain.ErrConflict)
	}
	if user.ValidationToken == "" || token != user.ValidationToken {
		return nil, fmt.Errorf("%w: invalid validation token", domain.ErrInvalidInput)
	}
	if user.ValidationExpiresAt != nil && s.clock.Now().After(*user.ValidationExpiresAt) {
		return nil, fmt.Errorf("%w: validation token expired", domain.ErrInvalidInput)
	}

	validated := true
	updated, err := s.userRepo.Update(ctx, user.ID, domain.UserPatch{
		EmailValidated:  &validated,
		ClearValidation: true,
	})
	if err != nil {
		return nil, fmt.Errorf("validate email: %w", err)
	}
	return updated, nil
}
