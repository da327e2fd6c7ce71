package services

import (
	"context"
	"log/slog"

	"eventdesk/internal/domain"
)

// notificationDispatcher delivers lifecycle emails after the authoritative
// write has succeeded. Delivery is best-effort: every failure is logged and
// swallowed, never surfaced to the triggering operation.
type notificationDispatcher struct {
	emails domain.EmailService
	logger *slog.Logger
}

// NewNotificationDispatcher returns a Notifier that sends lifecycle emails
// through the given EmailService.
func NewNotificationDispatcher(emails domain.EmailService, logger *slog.Logger) domain.Notifier {
	return &notificationDispatcher{emails: emails, logger: logger}
}

func (d *notificationDispatcher) UserCreated(ctx context.Context, user *domain.User) {
	if user == nil {
		return
	}
	data := &domain.WelcomeEmailData{
		Email:           user.Email,
		Name:            user.Name,
		ValidationToken: user.ValidationToken,
	}
	if user.ValidationExpiresAt != nil {
		data.ExpiresAt = *user.ValidationExpiresAt
	}
	if err := d.emails.SendWelcomeMessage(ctx, data); err != nil {
		d.logger.WarnContext(ctx, "welcome notification failed", "user_id", user.ID, "err", err)
	}
}

func (d *notificationDispatcher) EventCreated(ctx context.Context, event *domain.Event, organizer *domain.User) {
	if event == nil || organizer == nil {
		return
	}
	data := &domain.EventEmailData{
		Email:         organizer.Email,
		OrganizerName: organizer.Name,
		EventName:     event.Name,
		EventDate:     event.Date,
	}
	if err := d.emails.SendEventCreated(ctx, data); err != nil {
		d.logger.WarnContext(ctx, "event created notification failed", "event_id", event.ID, "err", err)
	}
}

func (d *notificationDispatcher) EventDeactivated(ctx context.Context, event *domain.Event, organizer *domain.User) {
	if event == nil || organizer == nil {
		return
	}
	data := &domain.EventEmailData{
		Email:         organizer.Email,
		OrganizerName: organizer.Name,
		EventName:     event.Name,
		EventDate:     event.Date,
	}
	if err := d.emails.SendEventDeactivated(ctx, data); err != nil {
		d.logger.WarnContext(ctx, "event deactivated notification failed", "event_id", event.ID, "err", err)
	}
}

func (d *notificationDispatcher) RegistrationConfirmed(ctx context.Context, reg *domain.Registration, event *domain.Event, user *domain.User) {
	if reg == nil || event == nil || user == nil {
		return
	}
	data := &domain.RegistrationEmailData{
		Email:     user.Email,
		Name:      user.Name,
		EventName: event.Name,
		EventDate: event.Date,
	}
	if err := d.emails.SendRegistrationConfirmed(ctx, data); err != nil {
		d.logger.WarnContext(ctx, "registration confirmation notification failed",
			"registration_id", reg.ID, "err", err)
	}
}

func (d *notificationDispatcher) RegistrationCancelled(ctx context.Context, reg *domain.Registration, event *domain.Event, user *domain.User) {
	if reg == nil || event == nil || user == nil {
		return
	}
	data := &domain.RegistrationEmailData{
		Email:     user.Email,
		Name:      user.Name,
		EventName: event.Name,
		EventDate: event.Date,
	}
	if err := d.emails.SendRegistrationCancelled(ctx, data); err != nil {
		d.logger.WarnContext(ctx, "registration cancellation notification failed",
			"registration_id", reg.ID, "err", err)
	}
}
