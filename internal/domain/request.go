package domain

import (
	"context"
	"fmt"
	"time"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest is a user's application to attend an event.
type ParticipationRequest struct {
	ID          int64         `json:"id" db:"id"`
	EventID     int64         `json:"event" db:"event_id"`
	RequesterID int64         `json:"requester" db:"requester_id"`
	Created     time.Time     `json:"created" db:"created"`
	Status      RequestStatus `json:"status" db:"status"`
}

// NewParticipationRequest returns a request with the given status. ID is set by the repository on create.
func NewParticipationRequest(eventID, requesterID int64, status RequestStatus, created time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Created:     created,
		Status:      status,
	}
}

// RequestDecision is an initiator's verdict on a batch of pending requests.
type RequestDecision struct {
	RequestIDs []int64
	Status     RequestStatus
}

// Validate checks the target status and that at least one id is given.
func (d RequestDecision) Validate() error {
	switch d.Status {
	case RequestStatusConfirmed, RequestStatusRejected, RequestStatusCanceled:
	default:
		return fmt.Errorf("%w: status must be one of CONFIRMED, REJECTED, CANCELED", ErrInvalidField)
	}
	if len(d.RequestIDs) == 0 {
		return fmt.Errorf("%w: requestIds must not be empty", ErrInvalidField)
	}
	return nil
}

// UniqueIDs returns the request ids with duplicates removed, keeping the
// first occurrence of each.
func (d RequestDecision) UniqueIDs() []int64 {
	seen := make(map[int64]struct{}, len(d.RequestIDs))
	ids := make([]int64, 0, len(d.RequestIDs))
	for _, id := range d.RequestIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// RequestStatusUpdateResult partitions the requests touched by a decision.
type RequestStatusUpdateResult struct {
	ConfirmedRequests []*ParticipationRequest `json:"confirmedRequests"`
	RejectedRequests  []*ParticipationRequest `json:"rejectedRequests"`
}

// DecideRequests applies target to every request in order against the event's
// remaining capacity. Either all requests transition and the event's
// confirmed counter is advanced, or an error is returned and nothing changes.
func DecideRequests(event *Event, requests []*ParticipationRequest, target RequestStatus) (*RequestStatusUpdateResult, error) {
	for _, r := range requests {
		if r.Status != RequestStatusPending {
			return nil, fmt.Errorf("%w: request id=%d has status %s", ErrRequestNotPending, r.ID, r.Status)
		}
	}

	confirmed := event.ConfirmedRequests
	if target == RequestStatusConfirmed && event.ParticipantLimit > 0 {
		if free := event.ParticipantLimit - confirmed; free < len(requests) {
			return nil, fmt.Errorf("%w: %d of %d requests fit", ErrParticipantLimit, max(free, 0), len(requests))
		}
	}

	result := &RequestStatusUpdateResult{
		ConfirmedRequests: []*ParticipationRequest{},
		RejectedRequests:  []*ParticipationRequest{},
	}
	for _, r := range requests {
		r.Status = target
		if target == RequestStatusConfirmed {
			confirmed++
			result.ConfirmedRequests = append(result.ConfirmedRequests, r)
		} else {
			result.RejectedRequests = append(result.RejectedRequests, r)
		}
	}
	event.ConfirmedRequests = confirmed
	return result, nil
}

// RequestRepository defines the interface for participation request storage
type RequestRepository interface {
	Create(ctx context.Context, req *ParticipationRequest) error
	// GetByIDForUpdate returns the request and holds a row lock on it until
	// the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*ParticipationRequest, error)
	// LockByIDs returns the existing requests among ids, row-locked, in id order.
	LockByIDs(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	// FindActive returns the non-canceled request of requesterID for eventID.
	FindActive(ctx context.Context, eventID, requesterID int64) (*ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	UpdateStatus(ctx context.Context, ids []int64, status RequestStatus) error
}

// AdmissionService defines the business logic for participation requests.
type AdmissionService interface {
	RequestJoin(ctx context.Context, userID, eventID int64) (*ParticipationRequest, error)
	CancelRequest(ctx context.Context, userID, requestID int64) (*ParticipationRequest, error)
	BatchDecide(ctx context.Context, initiatorID, eventID int64, decision RequestDecision) (*RequestStatusUpdateResult, error)
	ListRequestsForEvent(ctx context.Context, initiatorID, eventID int64) ([]*ParticipationRequest, error)
	ListRequestsForRequester(ctx context.Context, userID int64) ([]*ParticipationRequest, error)
}
