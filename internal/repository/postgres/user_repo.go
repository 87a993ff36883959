package postgres

import (
	"context"

	"explorewithme/internal/domain"

	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	if err := conn(ctx, r.DB).GetContext(ctx, u, `SELECT id, name, email, rating FROM users WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	if err := conn(ctx, r.DB).GetContext(ctx, u, `SELECT id, name, email, rating FROM users WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) SetRating(ctx context.Context, id int64, rating int64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE users SET rating = $1 WHERE id = $2`, rating, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
