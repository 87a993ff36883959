package postgres

import (
	"context"

	"explorewithme/internal/domain"

	"github.com/jmoiron/sqlx"
)

type categoryRepository struct {
	DB *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c := &domain.Category{}
	if err := conn(ctx, r.DB).GetContext(ctx, c, `SELECT id, name FROM categories WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return c, nil
}
