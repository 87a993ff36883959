package services

import (
	"context"
	"errors"
	"fmt"

	"explorewithme/internal/domain"
)

func getUser(ctx context.Context, repo domain.UserRepository, id int64) (*domain.User, error) {
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.UserNotFound(id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func lockUser(ctx context.Context, repo domain.UserRepository, id int64) (*domain.User, error) {
	u, err := repo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.UserNotFound(id)
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

func getEvent(ctx context.Context, repo domain.EventRepository, id int64) (*domain.Event, error) {
	e, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.EventNotFound(id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func lockEvent(ctx context.Context, repo domain.EventRepository, id int64) (*domain.Event, error) {
	e, err := repo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.EventNotFound(id)
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}
	return e, nil
}

// ownedBy hides events of other initiators behind NotFound.
func ownedBy(e *domain.Event, initiatorID int64) error {
	if e.InitiatorID != initiatorID {
		return domain.EventNotFound(e.ID)
	}
	return nil
}

func getCategory(ctx context.Context, repo domain.CategoryRepository, id int64) (*domain.Category, error) {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.CategoryNotFound(id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}
