package services

import (
	"context"
	"time"

	"eventdesk/internal/domain"
)

// fixedClock returns the same instant forever.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// fakeUserRepo is an in-memory UserRepository keyed by ID and email.
type fakeUserRepo struct {
	users     map[string]*domain.User
	updateErr error
	listUsers []*domain.User
	listNext  string
	listErr   error

	lastPatch *domain.UserPatch
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.lastPatch = &patch
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	if patch.Name != nil {
		clone.Name = *patch.Name
	}
	if patch.Email != nil {
		clone.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		clone.PasswordHash = *patch.PasswordHash
	}
	if patch.Phone != nil {
		clone.Phone = *patch.Phone
	}
	if patch.Role != nil {
		clone.Role = *patch.Role
	}
	if patch.ProfileAsset != nil {
		clone.ProfileAsset = patch.ProfileAsset
	}
	if patch.IsActive != nil {
		clone.IsActive = *patch.IsActive
	}
	if patch.EmailValidated != nil {
		clone.EmailValidated = *patch.EmailValidated
	}
	if patch.ValidationToken != nil {
		clone.ValidationToken = *patch.ValidationToken
	}
	if patch.ValidationExpiresAt != nil {
		clone.ValidationExpiresAt = patch.ValidationExpiresAt
	}
	if patch.ClearValidation {
		clone.ValidationToken = ""
		clone.ValidationExpiresAt = nil
	}
	r.users[id] = &clone
	return &clone, nil
}

func (r *fakeUserRepo) List(_ context.Context, _ domain.UserFilter, _ domain.Page) ([]*domain.User, string, error) {
	if r.listErr != nil {
		return nil, "", r.listErr
	}
	return r.listUsers, r.listNext, nil
}

// fakeEventRepo is an in-memory EventRepository keyed by ID and name.
type fakeEventRepo struct {
	events     map[string]*domain.Event
	createErr  error
	updateErr  error
	listEvents []*domain.Event
	listNext   string
	listErr    error

	created   *domain.Event
	lastPatch *domain.EventPatch
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return r
}

func (r *fakeEventRepo) Create(_ context.Context, e *domain.Event) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = e
	r.events[e.ID] = e
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r *fakeEventRepo) GetByName(_ context.Context, name string) (*domain.Event, error) {
	for _, e := range r.events {
		if e.Name == name && e.Status == domain.EventStatusActive {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeEventRepo) Update(_ context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	r.lastPatch = &patch
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *e
	if patch.Name != nil {
		clone.Name = *patch.Name
	}
	if patch.Description != nil {
		clone.Description = *patch.Description
	}
	if patch.Date != nil {
		clone.Date = *patch.Date
	}
	if patch.OrganizerID != nil {
		clone.OrganizerID = *patch.OrganizerID
	}
	if patch.Image != nil {
		clone.Image = patch.Image
	}
	if patch.Status != nil {
		clone.Status = *patch.Status
	}
	r.events[id] = &clone
	return &clone, nil
}

func (r *fakeEventRepo) List(_ context.Context, _ domain.EventFilter, _ domain.Page) ([]*domain.Event, string, error) {
	if r.listErr != nil {
		return nil, "", r.listErr
	}
	return r.listEvents, r.listNext, nil
}

// eventLookupFunc adapts the repo's GetByID to domain.EventLookup.
type eventLookupFunc func(ctx context.Context, id string) (*domain.Event, error)

func (f eventLookupFunc) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return f(ctx, id)
}

// fakeRegistrationRepo is an in-memory RegistrationRepository keyed by the
// (user, event) pair, mirroring the conditional-write semantics of the real
// table.
type fakeRegistrationRepo struct {
	regs      map[string]*domain.Registration
	createErr error
	listRegs  []*domain.Registration
	listNext  string
	listErr   error
}

func newFakeRegistrationRepo(regs ...*domain.Registration) *fakeRegistrationRepo {
	r := &fakeRegistrationRepo{regs: make(map[string]*domain.Registration)}
	for _, reg := range regs {
		r.regs[reg.UserID+"/"+reg.EventID] = reg
	}
	return r
}

func (r *fakeRegistrationRepo) Create(_ context.Context, reg *domain.Registration) error {
	if r.createErr != nil {
		return r.createErr
	}
	key := reg.UserID + "/" + reg.EventID
	if _, ok := r.regs[key]; ok {
		return domain.ErrConflict
	}
	r.regs[key] = reg
	return nil
}

func (r *fakeRegistrationRepo) GetByUserAndEvent(_ context.Context, userID, eventID string) (*domain.Registration, error) {
	reg, ok := r.regs[userID+"/"+eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (r *fakeRegistrationRepo) UpdateStatus(_ context.Context, userID, eventID string, status domain.RegistrationStatus, updatedAt time.Time) (*domain.Registration, error) {
	reg, ok := r.regs[userID+"/"+eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *reg
	clone.Status = status
	clone.UpdatedAt = updatedAt
	r.regs[userID+"/"+eventID] = &clone
	return &clone, nil
}

func (r *fakeRegistrationRepo) ListActiveByUser(_ context.Context, _ string, _ domain.Page) ([]*domain.Registration, string, error) {
	if r.listErr != nil {
		return nil, "", r.listErr
	}
	return r.listRegs, r.listNext, nil
}

// fakeNotifier counts dispatches per lifecycle hook.
type fakeNotifier struct {
	userCreated            int
	eventCreated           int
	eventDeactivated       int
	registrationsConfirmed int
	registrationsCancelled int

	lastOrganizer *domain.User
}

func (n *fakeNotifier) UserCreated(_ context.Context, _ *domain.User) { n.userCreated++ }

func (n *fakeNotifier) EventCreated(_ context.Context, _ *domain.Event, organizer *domain.User) {
	n.eventCreated++
	n.lastOrganizer = organizer
}

func (n *fakeNotifier) EventDeactivated(_ context.Context, _ *domain.Event, organizer *domain.User) {
	n.eventDeactivated++
	n.lastOrganizer = organizer
}

func (n *fakeNotifier) RegistrationConfirmed(_ context.Context, _ *domain.Registration, _ *domain.Event, _ *domain.User) {
	n.registrationsConfirmed++
}

func (n *fakeNotifier) RegistrationCancelled(_ context.Context, _ *domain.Registration, _ *domain.Event, _ *domain.User) {
	n.registrationsCancelled++
}

// fakeHasher is a transparent PasswordHasher for tests.
type fakeHasher struct {
	hashErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h *fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrForbidden
	}
	return nil
}

// fakeTokenIssuer returns a fixed token.
type fakeTokenIssuer struct {
	token string
	err   error
}

func (i *fakeTokenIssuer) Issue(_, _ string, _ domain.Role, _ time.Duration) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	return i.token, nil
}
