package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/domain"
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	events           domain.EventLookup
	userRepo         domain.UserRepository
	notifier         domain.Notifier
	clock            domain.Clock
	contextTimeout   time.Duration
}

// NewRegistrationService creates a RegistrationService. Event reads go
// through the narrow EventLookup so the registration lifecycle does not
// depend on the full event service.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	events domain.EventLookup,
	userRepo domain.UserRepository,
	notifier domain.Notifier,
	clock domain.Clock,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		events:           events,
		userRepo:         userRepo,
		notifier:         notifier,
		clock:            clock,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) Create(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if d := domain.Authorize(actor, domain.ActionCreateRegistration, userID); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	now := s.clock.Now()
	if event.Status != domain.EventStatusActive {
		return nil, fmt.Errorf("%w: event is not active", domain.ErrInvalidInput)
	}
	if !event.Date.After(now) {
		return nil, fmt.Errorf("%w: event date has already passed", domain.ErrInvalidInput)
	}

	// A cancelled registration blocks re-registration as well; the pair is
	// used once.
	if _, err := s.registrationRepo.GetByUserAndEvent(ctx, userID, eventID); err == nil {
		return nil, fmt.Errorf("%w: already registered for this event", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	reg := &domain.Registration{
		ID:               uuid.NewString(),
		UserID:           userID,
		EventID:          eventID,
		Status:           domain.RegistrationStatusActive,
		RegistrationDate: now,
		UpdatedAt:        now,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: already registered for this event", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.notifier.RegistrationConfirmed(ctx, reg, event, actor)
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if d := domain.Authorize(actor, domain.ActionCancelRegistration, userID); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	reg, err := s.registrationRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.Status == domain.RegistrationStatusCancelled {
		return nil, fmt.Errorf("%w: registration is already cancelled", domain.ErrConflict)
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	now := s.clock.Now()
	if !event.Date.After(now) {
		return nil, fmt.Errorf("%w: event date has already passed", domain.ErrInvalidInput)
	}

	updated, err := s.registrationRepo.UpdateStatus(ctx, userID, eventID, domain.RegistrationStatusCancelled, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("cancel registration: %w", err)
	}

	s.notifier.RegistrationCancelled(ctx, updated, event, actor)
	return updated, nil
}

func (s *registrationService) ListByUser(ctx context.Context, userID string, page domain.Page) ([]*domain.RegistrationWithEvent, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, next, err := s.registrationRepo.ListActiveByUser(ctx, userID, page)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("list registrations: %w", err)
	}

	// Eager join of event and organizer summaries. A registration whose
	// event or organizer no longer resolves is still listed, with the
	// summary fields left absent.
	eventsByID := make(map[string]*domain.EventSummary)
	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		summary, ok := eventsByID[reg.EventID]
		if !ok {
			summary = s.eventSummary(ctx, reg.EventID)
			eventsByID[reg.EventID] = summary
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        summary,
		})
	}
	return result, next, nil
}

func (s *registrationService) eventSummary(ctx context.Context, eventID string) *domain.EventSummary {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil
	}
	summary := &domain.EventSummary{
		ID:     event.ID,
		Name:   event.Name,
		Date:   event.Date,
		Status: event.Status,
	}
	if organizer, err := s.userRepo.GetByID(ctx, event.OrganizerID); err == nil {
		summary.Organizer = &domain.OrganizerSummary{ID: organizer.ID, Name: organizer.Name}
	}
	return summary
}
