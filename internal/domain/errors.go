package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns to a caller either wraps one of
// these or is an unexpected infrastructure failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidField = errors.New("invalid field")
)

// Conflict reasons.
var (
	ErrEventNotPublished     = fmt.Errorf("%w: event is not published", ErrConflict)
	ErrEventPublished        = fmt.Errorf("%w: only pending or canceled events can be changed", ErrConflict)
	ErrEventAlreadyPublished = fmt.Errorf("%w: event is already published", ErrConflict)
	ErrEventCanceled         = fmt.Errorf("%w: canceled event cannot be published", ErrConflict)
	ErrEventNotRejectable    = fmt.Errorf("%w: published event cannot be rejected", ErrConflict)
	ErrInitiatorRequest      = fmt.Errorf("%w: initiator cannot request participation in own event", ErrConflict)
	ErrDuplicateRequest      = fmt.Errorf("%w: participation request already exists", ErrConflict)
	ErrParticipantLimit      = fmt.Errorf("%w: participant limit has been reached", ErrConflict)
	ErrRequestNotPending     = fmt.Errorf("%w: request must have status PENDING", ErrConflict)
	ErrSelfReaction          = fmt.Errorf("%w: initiator cannot react to own event", ErrConflict)
	ErrAlreadyLiked          = fmt.Errorf("%w: event is already liked", ErrConflict)
	ErrAlreadyDisliked       = fmt.Errorf("%w: event is already disliked", ErrConflict)
)

// Validation reasons.
var (
	ErrEventDateInPast = fmt.Errorf("%w: event date must not be in the past", ErrInvalidField)
	ErrInvalidRange    = fmt.Errorf("%w: rangeEnd must not be before rangeStart", ErrInvalidField)
)

func EventNotFound(id int64) error {
	return fmt.Errorf("%w: event with id=%d was not found", ErrNotFound, id)
}

func UserNotFound(id int64) error {
	return fmt.Errorf("%w: user with id=%d was not found", ErrNotFound, id)
}

func RequestNotFound(id int64) error {
	return fmt.Errorf("%w: request with id=%d was not found", ErrNotFound, id)
}

func CategoryNotFound(id int64) error {
	return fmt.Errorf("%w: category with id=%d was not found", ErrNotFound, id)
}

func ReactionNotFound(kind ReactionType, eventID int64) error {
	return fmt.Errorf("%w: no %s found for event with id=%d", ErrNotFound, kind, eventID)
}
