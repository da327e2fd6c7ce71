package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event. The only permitted
// transition is ACTIVE -> INACTIVE.
type EventStatus string

const (
	EventStatusActive   EventStatus = "ACTIVE"
	EventStatusInactive EventStatus = "INACTIVE"
)

// Event represents a published event.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Date        time.Time   `json:"date"`
	OrganizerID string      `json:"organizer_id"`
	Image       *AssetRef   `json:"image,omitempty"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// EventFilter narrows an event listing. Status maps onto the status/date
// secondary index; Name is a substring match applied as a post-filter; the
// date bounds become a sort-key range when Status is set and a post-filter
// otherwise.
type EventFilter struct {
	Name   *string
	Status *EventStatus
	From   *time.Time
	To     *time.Time
}

// EventPatch describes a partial event update. Nil fields are left untouched.
type EventPatch struct {
	Name        *string
	Description *string
	Date        *time.Time
	OrganizerID *string
	Image       *AssetRef
	Status      *EventStatus
}

// IsEmpty reports whether the patch would change nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Date == nil &&
		p.OrganizerID == nil && p.Image == nil && p.Status == nil
}

// EventRepository defines the interface for event storage. Create is guarded
// by a conditional write on the id and returns ErrConflict if it already
// exists. GetByName matches the exact name among non-deleted events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByName(ctx context.Context, name string) (*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	List(ctx context.Context, filter EventFilter, page Page) ([]*Event, string, error)
}

// CreateEventInput is the validated input for event creation.
type CreateEventInput struct {
	Name        string
	Description string
	Date        time.Time
}

// UpdateEventInput is the validated input for a partial event update.
// OrganizerID reassignment is admin-only.
type UpdateEventInput struct {
	Name        *string
	Description *string
	Date        *time.Time
	OrganizerID *string
}

// EventLookup is the read-only slice of the event lifecycle that other
// services depend on. It keeps the registration service from depending on
// the full EventService.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
}

// EventService defines the event lifecycle.
type EventService interface {
	Create(ctx context.Context, in CreateEventInput, organizerID string, image *AssetUpload) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, in UpdateEventInput, requesterID string, image *AssetUpload) (*Event, error)
	Deactivate(ctx context.Context, id, requesterID string) (*Event, error)
	List(ctx context.Context, filter EventFilter, page Page) ([]*Event, string, error)
}
