package services

import (
	"context"
	"fmt"

	"eventdesk/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

func (s *emailService) send(template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	return nil
}

// SendWelcomeMessage sends the welcome / email-validation email using the "welcome" template.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	return s.send("welcome", data.Email, data)
}

func (s *emailService) SendEventCreated(ctx context.Context, data *domain.EventEmailData) error {
	if data == nil {
		return fmt.Errorf("event created data is nil")
	}
	return s.send("event_created", data.Email, data)
}

func (s *emailService) SendEventDeactivated(ctx context.Context, data *domain.EventEmailData) error {
	if data == nil {
		return fmt.Errorf("event deactivated data is nil")
	}
	return s.send("event_deactivated", data.Email, data)
}

func (s *emailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	return s.send("registration_confirmed", data.Email, data)
}

func (s *emailService) SendRegistrationCancelled(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration cancellation data is nil")
	}
	return s.send("registration_cancelled", data.Email, data)
}
