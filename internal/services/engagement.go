package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"explorewithme/internal/domain"
	"explorewithme/internal/metrics"
)

type engagementService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	reactionRepo   domain.ReactionRepository
	metrics        *metrics.Metrics
	contextTimeout time.Duration
}

func NewEngagementService(tx domain.Transactor,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	reactionRepo domain.ReactionRepository,
	m *metrics.Metrics,
	timeout time.Duration,
) domain.EngagementService {
	return &engagementService{
		tx:             tx,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		reactionRepo:   reactionRepo,
		metrics:        m,
		contextTimeout: timeout,
	}
}

func (s *engagementService) AddLike(ctx context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return s.add(ctx, initiatorID, eventID, voterID, domain.ReactionLike)
}

func (s *engagementService) AddDislike(ctx context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return s.add(ctx, initiatorID, eventID, voterID, domain.ReactionDislike)
}

func (s *engagementService) RemoveLike(ctx context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return s.remove(ctx, initiatorID, eventID, voterID, domain.ReactionLike)
}

func (s *engagementService) RemoveDislike(ctx context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return s.remove(ctx, initiatorID, eventID, voterID, domain.ReactionDislike)
}

func (s *engagementService) add(ctx context.Context, initiatorID, eventID, voterID int64, kind domain.ReactionType) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.withEvent(ctx, initiatorID, eventID, voterID, func(ctx context.Context, event *domain.Event) error {
		if err := event.CheckReaction(voterID); err != nil {
			return err
		}
		existing, err := s.reactionRepo.Get(ctx, eventID, voterID)
		switch {
		case err == nil && existing.Reaction == kind:
			return kind.AlreadyReacted()
		case err == nil:
			if err := s.reactionRepo.Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("delete reaction: %w", err)
			}
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("get reaction: %w", err)
		}
		if err := s.reactionRepo.Create(ctx, domain.NewReaction(event, voterID, kind)); err != nil {
			return fmt.Errorf("create reaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Reaction(string(kind), "add")
	return event, nil
}

func (s *engagementService) remove(ctx context.Context, initiatorID, eventID, voterID int64, kind domain.ReactionType) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.withEvent(ctx, initiatorID, eventID, voterID, func(ctx context.Context, _ *domain.Event) error {
		existing, err := s.reactionRepo.Get(ctx, eventID, voterID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ReactionNotFound(kind, eventID)
			}
			return fmt.Errorf("get reaction: %w", err)
		}
		if existing.Reaction != kind {
			return domain.ReactionNotFound(kind, eventID)
		}
		if err := s.reactionRepo.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("delete reaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Reaction(string(kind), "remove")
	return event, nil
}

// withEvent runs change in a transaction holding locks on the event and then
// its initiator, and recounts both ratings once change succeeds.
func (s *engagementService) withEvent(ctx context.Context, initiatorID, eventID, voterID int64, change func(ctx context.Context, event *domain.Event) error) (*domain.Event, error) {
	var event *domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := getUser(ctx, s.userRepo, voterID); err != nil {
			return err
		}
		var err error
		event, err = lockEvent(ctx, s.eventRepo, eventID)
		if err != nil {
			return err
		}
		initiator, err := lockUser(ctx, s.userRepo, initiatorID)
		if err != nil {
			return err
		}
		if err := ownedBy(event, initiator.ID); err != nil {
			return err
		}
		if err := change(ctx, event); err != nil {
			return err
		}
		return s.recount(ctx, event, initiator)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *engagementService) recount(ctx context.Context, event *domain.Event, initiator *domain.User) error {
	rating, err := s.reactionRepo.EventRating(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("count event rating: %w", err)
	}
	if err := s.eventRepo.SetRating(ctx, event.ID, rating); err != nil {
		return fmt.Errorf("update event rating: %w", err)
	}
	event.Rating = rating

	userRating, err := s.reactionRepo.InitiatorRating(ctx, initiator.ID)
	if err != nil {
		return fmt.Errorf("count user rating: %w", err)
	}
	if err := s.userRepo.SetRating(ctx, initiator.ID, userRating); err != nil {
		return fmt.Errorf("update user rating: %w", err)
	}
	initiator.Rating = userRating
	return nil
}
