package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle status of a registration. The only
// permitted transition is ACTIVE -> CANCELLED.
type RegistrationStatus string

const (
	RegistrationStatusActive    RegistrationStatus = "ACTIVE"
	RegistrationStatusCancelled RegistrationStatus = "CANCELLED"
)

// Registration represents a user's registration for an event. Identity is
// the (UserID, EventID) pair; at most one registration exists per pair.
// swagger:model Registration
type Registration struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	EventID          string             `json:"event_id"`
	Status           RegistrationStatus `json:"status"`
	RegistrationDate time.Time          `json:"registration_date"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// OrganizerSummary is the slim organizer view embedded in registration
// listings.
type OrganizerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventSummary is the slim event view embedded in registration listings.
type EventSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Date      time.Time         `json:"date"`
	Status    EventStatus       `json:"status"`
	Organizer *OrganizerSummary `json:"organizer,omitempty"`
}

// RegistrationWithEvent bundles a registration with its joined event summary.
// Event may be nil when the referenced event no longer resolves.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *EventSummary `json:"event,omitempty"`
}

// RegistrationRepository defines storage operations for registrations.
// Create is guarded by a conditional write on the (userID, eventID) pair and
// returns ErrConflict if one already exists.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*Registration, error)
	UpdateStatus(ctx context.Context, userID, eventID string, status RegistrationStatus, updatedAt time.Time) (*Registration, error)
	ListActiveByUser(ctx context.Context, userID string, page Page) ([]*Registration, string, error)
}

// RegistrationService defines the registration lifecycle.
type RegistrationService interface {
	Create(ctx context.Context, userID, eventID string) (*Registration, error)
	Cancel(ctx context.Context, userID, eventID string) (*Registration, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]*RegistrationWithEvent, string, error)
}
