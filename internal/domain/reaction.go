package domain

import "context"

type ReactionType string

const (
	ReactionLike    ReactionType = "LIKE"
	ReactionDislike ReactionType = "DISLIKE"
)

// Reaction is a user's like or dislike of a published event. A voter holds at
// most one reaction per event.
type Reaction struct {
	ID          int64        `json:"id" db:"id"`
	EventID     int64        `json:"eventId" db:"event_id"`
	EventUserID int64        `json:"eventUserId" db:"event_user_id"`
	VoterID     int64        `json:"votedUserId" db:"voter_id"`
	Reaction    ReactionType `json:"reaction" db:"reaction"`
}

func NewReaction(event *Event, voterID int64, kind ReactionType) *Reaction {
	return &Reaction{
		EventID:     event.ID,
		EventUserID: event.InitiatorID,
		VoterID:     voterID,
		Reaction:    kind,
	}
}

// AlreadyReacted is the conflict returned when the voter already holds kind.
func (k ReactionType) AlreadyReacted() error {
	if k == ReactionDislike {
		return ErrAlreadyDisliked
	}
	return ErrAlreadyLiked
}

// CheckReaction reports why voterID may not react to the event, if anything.
func (e *Event) CheckReaction(voterID int64) error {
	if e.InitiatorID == voterID {
		return ErrSelfReaction
	}
	return nil
}

// ReactionRepository defines the interface for reaction storage
type ReactionRepository interface {
	Create(ctx context.Context, reaction *Reaction) error
	// Get returns the voter's reaction to the event or ErrNotFound.
	Get(ctx context.Context, eventID, voterID int64) (*Reaction, error)
	Delete(ctx context.Context, id int64) error
	// EventRating counts likes minus dislikes of the event.
	EventRating(ctx context.Context, eventID int64) (int64, error)
	// InitiatorRating counts likes minus dislikes over all events initiated by userID.
	InitiatorRating(ctx context.Context, userID int64) (int64, error)
}

// EngagementService defines the business logic for likes and dislikes.
// Every operation returns the event with its recomputed rating.
type EngagementService interface {
	AddLike(ctx context.Context, initiatorID, eventID, voterID int64) (*Event, error)
	AddDislike(ctx context.Context, initiatorID, eventID, voterID int64) (*Event, error)
	RemoveLike(ctx context.Context, initiatorID, eventID, voterID int64) (*Event, error)
	RemoveDislike(ctx context.Context, initiatorID, eventID, voterID int64) (*Event, error)
}
