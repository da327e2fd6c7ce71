package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/domain"
)

type fakeEmailService struct {
	sendErr error

	welcome    []*domain.WelcomeEmailData
	created    []*domain.EventEmailData
	deactivate []*domain.EventEmailData
	confirmed  []*domain.RegistrationEmailData
	cancelled  []*domain.RegistrationEmailData
}

func (s *fakeEmailService) SendWelcomeMessage(_ context.Context, data *domain.WelcomeEmailData) error {
	s.welcome = append(s.welcome, data)
	return s.sendErr
}

func (s *fakeEmailService) SendEventCreated(_ context.Context, data *domain.EventEmailData) error {
	s.created = append(s.created, data)
	return s.sendErr
}

func (s *fakeEmailService) SendEventDeactivated(_ context.Context, data *domain.EventEmailData) error {
	s.deactivate = append(s.deactivate, data)
	return s.sendErr
}

func (s *fakeEmailService) SendRegistrationConfirmed(_ context.Context, data *domain.RegistrationEmailData) error {
	s.confirmed = append(s.confirmed, data)
	return s.sendErr
}

func (s *fakeEmailService) SendRegistrationCancelled(_ context.Context, data *domain.RegistrationEmailData) error {
	s.cancelled = append(s.cancelled, data)
	return s.sendErr
}

func TestNotificationDispatcherUserCreated(t *testing.T) {
	t.Run("welcome email carries the validation token", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		expiry := testNow.Add(24 * time.Hour)
		d.UserCreated(context.Background(), &domain.User{
			ID:                  "user-1",
			Name:                "Pat",
			Email:               "pat@example.com",
			ValidationToken:     "tok-1",
			ValidationExpiresAt: &expiry,
		})

		require.Len(t, emails.welcome, 1)
		assert.Equal(t, "pat@example.com", emails.welcome[0].Email)
		assert.Equal(t, "tok-1", emails.welcome[0].ValidationToken)
		assert.Equal(t, expiry, emails.welcome[0].ExpiresAt)
	})

	t.Run("nil user is ignored", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		d.UserCreated(context.Background(), nil)
		assert.Empty(t, emails.welcome)
	})

	t.Run("delivery failure is swallowed", func(t *testing.T) {
		emails := &fakeEmailService{sendErr: errors.New("smtp down")}
		d := NewNotificationDispatcher(emails, testLogger())

		d.UserCreated(context.Background(), &domain.User{ID: "user-1", Email: "pat@example.com"})
		assert.Len(t, emails.welcome, 1)
	})
}

func TestNotificationDispatcherEvents(t *testing.T) {
	event := &domain.Event{ID: "evt-1", Name: "Go Meetup", Date: testNow.Add(24 * time.Hour)}
	organizer := &domain.User{ID: "org-1", Name: "Olive", Email: "olive@example.com"}

	t.Run("created email goes to the organizer", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		d.EventCreated(context.Background(), event, organizer)
		require.Len(t, emails.created, 1)
		assert.Equal(t, "olive@example.com", emails.created[0].Email)
		assert.Equal(t, "Go Meetup", emails.created[0].EventName)
	})

	t.Run("nil organizer skips delivery", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		d.EventCreated(context.Background(), event, nil)
		d.EventDeactivated(context.Background(), event, nil)
		assert.Empty(t, emails.created)
		assert.Empty(t, emails.deactivate)
	})

	t.Run("deactivated email goes to the organizer", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		d.EventDeactivated(context.Background(), event, organizer)
		require.Len(t, emails.deactivate, 1)
		assert.Equal(t, "olive@example.com", emails.deactivate[0].Email)
	})
}

func TestNotificationDispatcherRegistrations(t *testing.T) {
	reg := &domain.Registration{ID: "reg-1", UserID: "part-1", EventID: "evt-1"}
	event := &domain.Event{ID: "evt-1", Name: "Go Meetup", Date: testNow.Add(24 * time.Hour)}
	user := &domain.User{ID: "part-1", Name: "Pat", Email: "pat@example.com"}

	t.Run("confirmation email goes to the participant", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		d.RegistrationConfirmed(context.Background(), reg, event, user)
		require.Len(t, emails.confirmed, 1)
		assert.Equal(t, "pat@example.com", emails.confirmed[0].Email)
		assert.Equal(t, "Go Meetup", emails.confirmed[0].EventName)
	})

	t.Run("cancellation email goes to the participant", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		d.RegistrationCancelled(context.Background(), reg, event, user)
		require.Len(t, emails.cancelled, 1)
		assert.Equal(t, "pat@example.com", emails.cancelled[0].Email)
	})

	t.Run("nil arguments skip delivery", func(t *testing.T) {
		emails := &fakeEmailService{}
		d := NewNotificationDispatcher(emails, testLogger())

		d.RegistrationConfirmed(context.Background(), nil, event, user)
		d.RegistrationConfirmed(context.Background(), reg, nil, user)
		d.RegistrationCancelled(context.Background(), reg, event, nil)
		assert.Empty(t, emails.confirmed)
		assert.Empty(t, emails.cancelled)
	})
}
