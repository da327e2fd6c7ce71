package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome / email-validation email.
type WelcomeEmailData struct {
	Email           string
	Name            string
	ValidationToken string
	ExpiresAt       time.Time
}

// EventEmailData holds data for organizer-facing event lifecycle emails.
type EventEmailData struct {
	Email         string
	OrganizerName string
	EventName     string
	EventDate     time.Time
}

// RegistrationEmailData holds data for attendee-facing registration emails.
type RegistrationEmailData struct {
	Email     string
	Name      string
	EventName string
	EventDate time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeEmailData) error
	SendEventCreated(ctx context.Context, data *EventEmailData) error
	SendEventDeactivated(ctx context.Context, data *EventEmailData) error
	SendRegistrationConfirmed(ctx context.Context, data *RegistrationEmailData) error
	SendRegistrationCancelled(ctx context.Context, data *RegistrationEmailData) error
}

// Notifier dispatches best-effort lifecycle notifications after the
// authoritative write has succeeded. Implementations log and swallow
// failures; none of these calls may surface an error to the caller.
type Notifier interface {
	UserCreated(ctx context.Context, user *User)
	EventCreated(ctx context.Context, event *Event, organizer *User)
	EventDeactivated(ctx context.Context, event *Event, organizer *User)
	RegistrationConfirmed(ctx context.Context, reg *Registration, event *Event, user *User)
	RegistrationCancelled(ctx context.Context, reg *Registration, event *Event, user *User)
}
