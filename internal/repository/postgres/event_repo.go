package postgres

import (
	"context"
	"fmt"
	"strings"

	"explorewithme/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id, lat, lon, paid,
		participant_limit, request_moderation, event_date, created_on, published_on, state,
		confirmed_requests, event_rating`

type eventRepository struct {
	DB *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id, lat, lon, paid,
			participant_limit, request_moderation, event_date, created_on, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowxContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID, e.Lat, e.Lon, e.Paid,
		e.ParticipantLimit, e.RequestModeration, e.EventDate, e.CreatedOn, e.State,
	).Scan(&e.ID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: unknown category or initiator", domain.ErrNotFound)
	}
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	e := &domain.Event{}
	err := conn(ctx, r.DB).GetContext(ctx, e, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	e := &domain.Event{}
	err := conn(ctx, r.DB).GetContext(ctx, e, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, annotation = $2, description = $3, category_id = $4, lat = $5, lon = $6,
			paid = $7, participant_limit = $8, request_moderation = $9, event_date = $10,
			published_on = $11, state = $12
		WHERE id = $13
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.Lat, e.Lon,
		e.Paid, e.ParticipantLimit, e.RequestModeration, e.EventDate,
		e.PublishedOn, e.State, e.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *eventRepository) SetConfirmedRequests(ctx context.Context, id int64, confirmed int) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE events SET confirmed_requests = $1 WHERE id = $2`, confirmed, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *eventRepository) SetRating(ctx context.Context, id int64, rating int64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE events SET event_rating = $1 WHERE id = $2`, rating, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PaginationParams) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE initiator_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
	events := make([]*domain.Event, 0)
	if err := conn(ctx, r.DB).SelectContext(ctx, &events, query, initiatorID, page.Limit(), page.Offset()); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Search(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	var where []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Text != "" {
		add("(annotation ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+escapeLike(f.Text)+"%")
	}
	if len(f.Users) > 0 {
		add("initiator_id = ANY($%d)", pq.Array(f.Users))
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		add("state = ANY($%d)", pq.Array(states))
	}
	if len(f.Categories) > 0 {
		add("category_id = ANY($%d)", pq.Array(f.Categories))
	}
	if f.Paid != nil {
		add("paid = $%d", *f.Paid)
	}
	if f.RangeStart != nil {
		add("event_date >= $%d", *f.RangeStart)
	}
	if f.RangeEnd != nil {
		add("event_date <= $%d", *f.RangeEnd)
	}
	if f.OnlyAvailable {
		where = append(where, "(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	order := "id"
	if f.Sort == domain.EventSortDate {
		order = "event_date"
	}
	args = append(args, f.Page.Limit(), f.Page.Offset())
	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", order, len(args)-1, len(args))

	events := make([]*domain.Event, 0)
	if err := conn(ctx, r.DB).SelectContext(ctx, &events, query, args...); err != nil {
		return nil, err
	}
	return events, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
