package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"explorewithme/internal/domain"
	"explorewithme/internal/metrics"
)

type admissionService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	requestRepo    domain.RequestRepository
	userRepo       domain.UserRepository
	notifier       *notifier
	metrics        *metrics.Metrics
	contextTimeout time.Duration
	now            func() time.Time
}

func NewAdmissionService(tx domain.Transactor,
	eventRepo domain.EventRepository,
	requestRepo domain.RequestRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	m *metrics.Metrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AdmissionService {
	return &admissionService{
		tx:             tx,
		eventRepo:      eventRepo,
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		notifier:       newNotifier(userRepo, emailService, logger),
		metrics:        m,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *admissionService) RequestJoin(ctx context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var created *domain.ParticipationRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := getUser(ctx, s.userRepo, userID); err != nil {
			return err
		}
		event, err := lockEvent(ctx, s.eventRepo, eventID)
		if err != nil {
			return err
		}
		if err := event.CheckAdmission(userID); err != nil {
			return err
		}
		if _, err := s.requestRepo.FindActive(ctx, eventID, userID); err == nil {
			return domain.ErrDuplicateRequest
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("find request: %w", err)
		}
		if !event.HasCapacity() {
			return domain.ErrParticipantLimit
		}

		req := domain.NewParticipationRequest(eventID, userID, event.AdmissionStatus(), s.now().UTC().Truncate(time.Second))
		if err := s.requestRepo.Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if req.Status == domain.RequestStatusConfirmed {
			event.ConfirmedRequests++
			if err := s.eventRepo.SetConfirmedRequests(ctx, event.ID, event.ConfirmedRequests); err != nil {
				return fmt.Errorf("update confirmed requests: %w", err)
			}
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RequestCreated(string(created.Status))
	return created, nil
}

func (s *admissionService) CancelRequest(ctx context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var req *domain.ParticipationRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := getUser(ctx, s.userRepo, userID); err != nil {
			return err
		}
		var err error
		req, err = s.requestRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.RequestNotFound(requestID)
			}
			return fmt.Errorf("get request: %w", err)
		}
		if req.RequesterID != userID {
			return domain.RequestNotFound(requestID)
		}
		if req.Status == domain.RequestStatusCanceled {
			return nil
		}
		req.Status = domain.RequestStatusCanceled
		if err := s.requestRepo.UpdateStatus(ctx, []int64{req.ID}, req.Status); err != nil {
			return fmt.Errorf("cancel request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *admissionService) BatchDecide(ctx context.Context, initiatorID, eventID int64, decision domain.RequestDecision) (*domain.RequestStatusUpdateResult, error) {
	if err := decision.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids := decision.UniqueIDs()
	var event *domain.Event
	var result *domain.RequestStatusUpdateResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := getUser(ctx, s.userRepo, initiatorID); err != nil {
			return err
		}
		var err error
		event, err = lockEvent(ctx, s.eventRepo, eventID)
		if err != nil {
			return err
		}
		if err := ownedBy(event, initiatorID); err != nil {
			return err
		}

		locked, err := s.requestRepo.LockByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock requests: %w", err)
		}
		byID := make(map[int64]*domain.ParticipationRequest, len(locked))
		for _, r := range locked {
			byID[r.ID] = r
		}
		ordered := make([]*domain.ParticipationRequest, 0, len(ids))
		for _, id := range ids {
			r, ok := byID[id]
			if !ok || r.EventID != event.ID {
				return domain.RequestNotFound(id)
			}
			ordered = append(ordered, r)
		}

		before := event.ConfirmedRequests
		result, err = domain.DecideRequests(event, ordered, decision.Status)
		if err != nil {
			return err
		}
		if err := s.requestRepo.UpdateStatus(ctx, ids, decision.Status); err != nil {
			return fmt.Errorf("update request statuses: %w", err)
		}
		if event.ConfirmedRequests != before {
			if err := s.eventRepo.SetConfirmedRequests(ctx, event.ID, event.ConfirmedRequests); err != nil {
				return fmt.Errorf("update confirmed requests: %w", err)
			}
		}
		return nil
	})
	s.metrics.RequestBatch(string(decision.Status), err)
	if err != nil {
		return nil, err
	}
	s.notifier.requestDecisions(ctx, event, result)
	return result, nil
}

func (s *admissionService) ListRequestsForEvent(ctx context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := getUser(ctx, s.userRepo, initiatorID); err != nil {
		return nil, err
	}
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(event, initiatorID); err != nil {
		return nil, err
	}
	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

func (s *admissionService) ListRequestsForRequester(ctx context.Context, userID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := getUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}
