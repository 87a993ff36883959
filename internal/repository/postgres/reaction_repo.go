package postgres

import (
	"context"

	"explorewithme/internal/domain"

	"github.com/jmoiron/sqlx"
)

type reactionRepository struct {
	DB *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) domain.ReactionRepository {
	return &reactionRepository{
		DB: db,
	}
}

func (r *reactionRepository) Create(ctx context.Context, rc *domain.Reaction) error {
	query := `
		INSERT INTO reactions (event_id, event_user_id, voter_id, reaction)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowxContext(ctx, query, rc.EventID, rc.EventUserID, rc.VoterID, rc.Reaction).Scan(&rc.ID)
	if isUniqueViolation(err) {
		return rc.Reaction.AlreadyReacted()
	}
	return err
}

func (r *reactionRepository) Get(ctx context.Context, eventID, voterID int64) (*domain.Reaction, error) {
	query := `
		SELECT id, event_id, event_user_id, voter_id, reaction
		FROM reactions
		WHERE event_id = $1 AND voter_id = $2
	`
	rc := &domain.Reaction{}
	if err := conn(ctx, r.DB).GetContext(ctx, rc, query, eventID, voterID); err != nil {
		return nil, notFound(err)
	}
	return rc, nil
}

func (r *reactionRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM reactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const ratingExpr = `COALESCE(SUM(CASE WHEN reaction = 'LIKE' THEN 1 ELSE -1 END), 0)`

func (r *reactionRepository) EventRating(ctx context.Context, eventID int64) (int64, error) {
	var rating int64
	err := conn(ctx, r.DB).GetContext(ctx, &rating, `SELECT `+ratingExpr+` FROM reactions WHERE event_id = $1`, eventID)
	return rating, err
}

func (r *reactionRepository) InitiatorRating(ctx context.Context, userID int64) (int64, error) {
	var rating int64
	err := conn(ctx, r.DB).GetContext(ctx, &rating, `SELECT `+ratingExpr+` FROM reactions WHERE event_user_id = $1`, userID)
	return rating, err
}
