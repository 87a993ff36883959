package postgres

import (
	"context"
	"database/sql"
	"testing"

	"explorewithme/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		lock    bool
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.User
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, email, rating FROM users WHERE id = \$1$`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "rating"}).
						AddRow(3, "Ann", "ann@example.com", 7))
			},
			want: &domain.User{ID: 3, Name: "Ann", Email: "ann@example.com", Rating: 7},
		},
		{
			name: "locks row",
			lock: true,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, name, email, rating FROM users WHERE id = \$1 FOR UPDATE`).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "rating"}).
						AddRow(3, "Ann", "ann@example.com", -1))
			},
			want: &domain.User{ID: 3, Name: "Ann", Email: "ann@example.com", Rating: -1},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users`).
					WithArgs(int64(3)).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.mock(mock)

			repo := NewUserRepository(db)
			var got *domain.User
			var err error
			if tt.lock {
				got, err = repo.GetByIDForUpdate(ctx, 3)
			} else {
				got, err = repo.GetByID(ctx, 3)
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_SetRating(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE users SET rating = \$1 WHERE id = \$2`).
		WithArgs(int64(5), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET rating`).
		WithArgs(int64(5), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepository(db)
	require.NoError(t, repo.SetRating(ctx, 3, 5))
	require.ErrorIs(t, repo.SetRating(ctx, 4, 5), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT id, name FROM categories WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Concerts"))
	mock.ExpectQuery(`FROM categories`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	repo := NewCategoryRepository(db)
	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, &domain.Category{ID: 2, Name: "Concerts"}, got)

	_, err = repo.GetByID(ctx, 9)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
