package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the signup welcome email.
type WelcomeEmailData struct {
	Email string
	Name  string
}

// InvitationEmailData holds data for the conference invitation email.
type InvitationEmailData struct {
	Email          string
	Name           string
	OrganizerName  string
	ConferenceName string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
