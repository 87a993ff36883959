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

// RequestDecisionEmailData holds data for the email sent to a requester once
// the initiator decided on their request.
type RequestDecisionEmailData struct {
	Email      string
	Name       string
	EventID    int64
	EventTitle string
	RequestID  int64
	Status     RequestStatus
}

// EventModeratedEmailData holds data for the email sent to an initiator once a
// moderator published or rejected their event.
type EventModeratedEmailData struct {
	Email      string
	Name       string
	EventID    int64
	EventTitle string
	State      EventState
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRequestDecision(ctx context.Context, data *RequestDecisionEmailData) error
	SendEventModerated(ctx context.Context, data *EventModeratedEmailData) error
}
