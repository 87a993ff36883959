package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"explorewithme/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRequestDecision sends the "request_decision" email to a requester.
func (s *emailService) SendRequestDecision(ctx context.Context, data *domain.RequestDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("request decision data is nil")
	}
	return s.send(ctx, "request_decision", data.Email, data)
}

// SendEventModerated sends the "event_moderated" email to an event initiator.
func (s *emailService) SendEventModerated(ctx context.Context, data *domain.EventModeratedEmailData) error {
	if data == nil {
		return fmt.Errorf("event moderated data is nil")
	}
	return s.send(ctx, "event_moderated", data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.DebugContext(ctx, "email sent", "template", template, "to", to)
	return nil
}

// notifier sends emails after a unit of work has committed. Failures are
// logged and never reach the caller.
// notifyTimeout bounds one background delivery of decision or moderation
// emails.
const notifyTimeout = time.Minute

// notifier emails the users affected by a committed change. Delivery runs in
// the background and failures are only logged.
type notifier struct {
	userRepo domain.UserRepository
	email    domain.EmailService
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func newNotifier(userRepo domain.UserRepository, email domain.EmailService, logger *slog.Logger) *notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &notifier{userRepo: userRepo, email: email, logger: logger}
}

// dispatch runs send on its own goroutine. The caller's cancellation does not
// abort it.
func (n *notifier) dispatch(ctx context.Context, send func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		send(ctx)
	}()
}

// wait blocks until every dispatched delivery has finished.
func (n *notifier) wait() {
	n.wg.Wait()
}

func (n *notifier) requestDecisions(ctx context.Context, event *domain.Event, result *domain.RequestStatusUpdateResult) {
	if n.email == nil {
		return
	}
	eventID, eventTitle := event.ID, event.Title
	decided := make([]domain.ParticipationRequest, 0, len(result.ConfirmedRequests)+len(result.RejectedRequests))
	for _, req := range result.ConfirmedRequests {
		decided = append(decided, *req)
	}
	for _, req := range result.RejectedRequests {
		decided = append(decided, *req)
	}

	n.dispatch(ctx, func(ctx context.Context) {
		for _, req := range decided {
			user, err := n.userRepo.GetByID(ctx, req.RequesterID)
			if err != nil {
				n.logger.WarnContext(ctx, "decision email skipped", "request_id", req.ID, "err", err)
				continue
			}
			err = n.email.SendRequestDecision(ctx, &domain.RequestDecisionEmailData{
				Email:      user.Email,
				Name:       user.Name,
				EventID:    eventID,
				EventTitle: eventTitle,
				RequestID:  req.ID,
				Status:     req.Status,
			})
			if err != nil {
				n.logger.WarnContext(ctx, "decision email failed", "request_id", req.ID, "err", err)
			}
		}
	})
}

func (n *notifier) eventModerated(ctx context.Context, event *domain.Event) {
	if n.email == nil {
		return
	}
	moderated := *event

	n.dispatch(ctx, func(ctx context.Context) {
		user, err := n.userRepo.GetByID(ctx, moderated.InitiatorID)
		if err != nil {
			n.logger.WarnContext(ctx, "moderation email skipped", "event_id", moderated.ID, "err", err)
			return
		}
		err = n.email.SendEventModerated(ctx, &domain.EventModeratedEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventID:    moderated.ID,
			EventTitle: moderated.Title,
			State:      moderated.State,
		})
		if err != nil {
			n.logger.WarnContext(ctx, "moderation email failed", "event_id", moderated.ID, "err", err)
		}
	})
}
