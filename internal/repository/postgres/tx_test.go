package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestTransactor_WithinTx(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func(ctx context.Context, db *sqlx.DB) error
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "commit",
			fn: func(ctx context.Context, db *sqlx.DB) error {
				return NewUserRepository(db).SetRating(ctx, 1, 5)
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE users SET rating = \$1 WHERE id = \$2`).
					WithArgs(int64(5), int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "rollback on error",
			fn: func(ctx context.Context, db *sqlx.DB) error {
				return errBoom
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantErr: errBoom,
		},
		{
			name: "nested call joins outer transaction",
			fn: func(ctx context.Context, db *sqlx.DB) error {
				return NewTransactor(db).WithinTx(ctx, func(ctx context.Context) error {
					return NewUserRepository(db).SetRating(ctx, 2, -1)
				})
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE users SET rating`).
					WithArgs(int64(-1), int64(2)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "begin fails",
			fn: func(ctx context.Context, db *sqlx.DB) error {
				return errors.New("fn must not run")
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.mock(mock)

			err := NewTransactor(db).WithinTx(ctx, func(ctx context.Context) error {
				return tt.fn(ctx, db)
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactor_RollbackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = NewTransactor(db).WithinTx(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}
