package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/domain"
)

const eventImagePrefix = "events"

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	assets         *AssetCoordinator
	notifier       domain.Notifier
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories and
// collaborators.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	assets *AssetCoordinator,
	notifier domain.Notifier,
	clock domain.Clock,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		assets:         assets,
		notifier:       notifier,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, in domain.CreateEventInput, organizerID string, image *domain.AssetUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get organizer: %w", err)
	}
	if d := domain.Authorize(actor, domain.ActionCreateEvent, organizerID); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	now := s.clock.Now()
	if !in.Date.After(now) {
		return nil, fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
	}
	if _, err := s.eventRepo.GetByName(ctx, in.Name); err == nil {
		return nil, fmt.Errorf("%w: event name already in use", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check event name: %w", err)
	}

	event := &domain.Event{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date.UTC(),
		OrganizerID: organizerID,
		Status:      domain.EventStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.assets.CreateWithAsset(ctx, image, eventImagePrefix, organizerID, func(ref *domain.AssetRef) error {
		event.Image = ref
		return s.eventRepo.Create(ctx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.notifier.EventCreated(ctx, event, actor)
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id string, in domain.UpdateEventInput, requesterID string, image *domain.AssetUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get requester: %w", err)
	}
	if d := domain.Authorize(requester, domain.ActionUpdateEvent, event.OrganizerID); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	// Only fields that actually differ from the current record contribute to
	// the write.
	var patch domain.EventPatch
	if in.Name != nil && *in.Name != event.Name {
		if existing, err := s.eventRepo.GetByName(ctx, *in.Name); err == nil && existing.ID != event.ID {
			return nil, fmt.Errorf("%w: event name already in use", domain.ErrConflict)
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("check event name: %w", err)
		}
		patch.Name = in.Name
	}
	if in.Description != nil && *in.Description != event.Description {
		patch.Description = in.Description
	}
	if in.Date != nil && !in.Date.Equal(event.Date) {
		if !in.Date.After(s.clock.Now()) {
			return nil, fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
		}
		d := in.Date.UTC()
		patch.Date = &d
	}
	if in.OrganizerID != nil && *in.OrganizerID != event.OrganizerID {
		if requester.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: organizer reassignment is admin-only", domain.ErrForbidden)
		}
		target, err := s.userRepo.GetByID(ctx, *in.OrganizerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get target organizer: %w", err)
		}
		if target.Role != domain.RoleOrganizer && target.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: target user cannot organize events", domain.ErrForbidden)
		}
		patch.OrganizerID = in.OrganizerID
	}

	// A no-op patch with no new asset short-circuits without a write.
	if patch.IsEmpty() && image == nil {
		return event, nil
	}

	var updated *domain.Event
	write := func(ref *domain.AssetRef) error {
		if ref != nil {
			patch.Image = ref
		}
		var err error
		updated, err = s.eventRepo.Update(ctx, id, patch)
		return err
	}
	if image != nil {
		err = s.assets.ReplaceAsset(ctx, image, eventImagePrefix, event.OrganizerID, event.Image, write)
	} else {
		err = write(nil)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) Deactivate(ctx context.Context, id, requesterID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status == domain.EventStatusInactive {
		return nil, fmt.Errorf("%w: event is already inactive", domain.ErrInvalidInput)
	}
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get requester: %w", err)
	}
	if d := domain.Authorize(requester, domain.ActionDeleteEvent, event.OrganizerID); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	status := domain.EventStatusInactive
	updated, err := s.eventRepo.Update(ctx, id, domain.EventPatch{Status: &status})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("deactivate event: %w", err)
	}

	// Notify the organizer on record, which may differ from the requester.
	organizer := requester
	if event.OrganizerID != requesterID {
		organizer, err = s.userRepo.GetByID(ctx, event.OrganizerID)
		if err != nil {
			organizer = nil
		}
	}
	s.notifier.EventDeactivated(ctx, updated, organizer)
	return updated, nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter, page domain.Page) ([]*domain.Event, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, next, err := s.eventRepo.List(ctx, filter, page)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, next, nil
}
