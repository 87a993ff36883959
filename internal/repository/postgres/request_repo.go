package postgres

import (
	"context"

	"explorewithme/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const requestColumns = `id, event_id, requester_id, created, status`

type requestRepository struct {
	DB *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) domain.RequestRepository {
	return &requestRepository{
		DB: db,
	}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO requests (event_id, requester_id, created, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowxContext(ctx, query, req.EventID, req.RequesterID, req.Created, req.Status).Scan(&req.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateRequest
	}
	return err
}

func (r *requestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	err := conn(ctx, r.DB).GetContext(ctx, req, `SELECT `+requestColumns+` FROM requests WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

func (r *requestRepository) LockByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	reqs := make([]*domain.ParticipationRequest, 0, len(ids))
	if err := conn(ctx, r.DB).SelectContext(ctx, &reqs, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requestRepository) FindActive(ctx context.Context, eventID, requesterID int64) (*domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE event_id = $1 AND requester_id = $2 AND status <> 'CANCELED'
	`
	req := &domain.ParticipationRequest{}
	if err := conn(ctx, r.DB).GetContext(ctx, req, query, eventID, requesterID); err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	reqs := make([]*domain.ParticipationRequest, 0)
	err := conn(ctx, r.DB).SelectContext(ctx, &reqs, `SELECT `+requestColumns+` FROM requests WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	reqs := make([]*domain.ParticipationRequest, 0)
	err := conn(ctx, r.DB).SelectContext(ctx, &reqs, `SELECT `+requestColumns+` FROM requests WHERE requester_id = $1 ORDER BY id`, requesterID)
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	res, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE requests SET status = $1 WHERE id = ANY($2)`, status, pq.Array(ids))
	if err != nil {
		return err
	}
	return requireAffected(res)
}
