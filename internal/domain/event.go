package domain

import (
	"context"
	"fmt"
	"time"
)

type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// StateAction is a requested lifecycle transition carried by an event update.
type StateAction string

const (
	StateActionSendToReview StateAction = "SEND_TO_REVIEW"
	StateActionCancelReview StateAction = "CANCEL_REVIEW"
	StateActionPublish      StateAction = "PUBLISH_EVENT"
	StateActionReject       StateAction = "REJECT_EVENT"
)

// EventSort orders public event listings.
type EventSort string

const (
	EventSortDate  EventSort = "EVENT_DATE"
	EventSortViews EventSort = "VIEWS"
)

type Location struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// Event is a user-created happening that goes through moderation before it is
// visible to other users.
type Event struct {
	ID                int64  `json:"id" db:"id"`
	Title             string `json:"title" db:"title"`
	Annotation        string `json:"annotation" db:"annotation"`
	Description       string `json:"description" db:"description"`
	CategoryID        int64  `json:"category" db:"category_id"`
	InitiatorID       int64  `json:"initiator" db:"initiator_id"`
	Location          `json:"location"`
	Paid              bool       `json:"paid" db:"paid"`
	ParticipantLimit  int        `json:"participantLimit" db:"participant_limit"`
	RequestModeration bool       `json:"requestModeration" db:"request_moderation"`
	EventDate         time.Time  `json:"eventDate" db:"event_date"`
	CreatedOn         time.Time  `json:"createdOn" db:"created_on"`
	PublishedOn       *time.Time `json:"publishedOn,omitempty" db:"published_on"`
	State             EventState `json:"state" db:"state"`
	ConfirmedRequests int        `json:"confirmedRequests" db:"confirmed_requests"`
	Rating            int64      `json:"rating" db:"event_rating"`
	Views             int64      `json:"views" db:"-"`
}

// NewEvent returns a pending Event. ID is set by the repository on create.
func NewEvent(initiatorID, categoryID int64, title, annotation, description string, eventDate time.Time, loc Location, paid bool, participantLimit int, requestModeration bool, createdOn time.Time) *Event {
	return &Event{
		Title:             title,
		Annotation:        annotation,
		Description:       description,
		CategoryID:        categoryID,
		InitiatorID:       initiatorID,
		Location:          loc,
		Paid:              paid,
		ParticipantLimit:  participantLimit,
		RequestModeration: requestModeration,
		EventDate:         eventDate,
		CreatedOn:         createdOn,
		State:             EventStatePending,
	}
}

func (e *Event) IsPublished() bool {
	return e.State == EventStatePublished
}

// HasCapacity reports whether one more participant can be confirmed.
// A limit of zero means unlimited.
func (e *Event) HasCapacity() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < e.ParticipantLimit
}

// AdmissionStatus is the status a new participation request receives.
func (e *Event) AdmissionStatus() RequestStatus {
	if !e.RequestModeration || e.ParticipantLimit == 0 {
		return RequestStatusConfirmed
	}
	return RequestStatusPending
}

// CheckAdmission reports why userID may not request participation, if anything.
func (e *Event) CheckAdmission(userID int64) error {
	if !e.IsPublished() {
		return ErrEventNotPublished
	}
	if e.InitiatorID == userID {
		return ErrInitiatorRequest
	}
	return nil
}

// ValidateEventDate checks that date is not in the past.
func ValidateEventDate(date, now time.Time) error {
	if date.Before(now) {
		return ErrEventDateInPast
	}
	return nil
}

// EventPatch is a partial update of an event. Nil fields are left unchanged.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	EventDate         *time.Time
	StateAction       *StateAction
}

// HasFieldChanges reports whether the patch touches anything besides the state.
func (p EventPatch) HasFieldChanges() bool {
	return p.Title != nil || p.Annotation != nil || p.Description != nil ||
		p.CategoryID != nil || p.Location != nil || p.Paid != nil ||
		p.ParticipantLimit != nil || p.RequestModeration != nil || p.EventDate != nil
}

// ApplyInitiatorUpdate applies an update made by the event's initiator. The
// event is left untouched when an error is returned.
func (e *Event) ApplyInitiatorUpdate(p EventPatch, now time.Time) error {
	if e.IsPublished() {
		return ErrEventPublished
	}
	var next EventState
	if p.StateAction != nil {
		switch *p.StateAction {
		case StateActionSendToReview:
			next = EventStatePending
		case StateActionCancelReview:
			next = EventStateCanceled
		default:
			return fmt.Errorf("%w: state action %s is not available to the initiator", ErrInvalidField, *p.StateAction)
		}
	}
	if err := e.validateFields(p, now); err != nil {
		return err
	}
	e.applyFields(p)
	if next != "" {
		e.State = next
	}
	return nil
}

// ApplyModeratorUpdate applies an update made by a moderator. Publishing
// stamps PublishedOn with now. The event is left untouched when an error is
// returned.
func (e *Event) ApplyModeratorUpdate(p EventPatch, now time.Time) error {
	if p.StateAction != nil {
		switch *p.StateAction {
		case StateActionPublish:
			if e.State == EventStatePublished {
				return ErrEventAlreadyPublished
			}
			if e.State == EventStateCanceled {
				return ErrEventCanceled
			}
		case StateActionReject:
			if e.State == EventStatePublished {
				return ErrEventNotRejectable
			}
		default:
			return fmt.Errorf("%w: state action %s is not available to moderators", ErrInvalidField, *p.StateAction)
		}
	}
	if e.IsPublished() && p.HasFieldChanges() {
		return ErrEventPublished
	}
	if err := e.validateFields(p, now); err != nil {
		return err
	}
	e.applyFields(p)
	if p.StateAction == nil {
		return nil
	}
	switch *p.StateAction {
	case StateActionPublish:
		e.State = EventStatePublished
		published := now
		e.PublishedOn = &published
	case StateActionReject:
		e.State = EventStateCanceled
	}
	return nil
}

func (e *Event) validateFields(p EventPatch, now time.Time) error {
	if p.EventDate != nil {
		if err := ValidateEventDate(*p.EventDate, now); err != nil {
			return err
		}
	}
	if p.ParticipantLimit != nil {
		limit := *p.ParticipantLimit
		if limit < 0 {
			return fmt.Errorf("%w: participantLimit must not be negative", ErrInvalidField)
		}
		if limit > 0 && limit < e.ConfirmedRequests {
			return fmt.Errorf("%w: participantLimit is below the number of confirmed requests", ErrInvalidField)
		}
	}
	return nil
}

func (e *Event) applyFields(p EventPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Annotation != nil {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
}

// EventFilter narrows event searches. Zero values mean "no restriction".
type EventFilter struct {
	Text          string
	Users         []int64
	States        []EventState
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          EventSort
	Page          PaginationParams
}

// Validate checks the date range.
func (f EventFilter) Validate() error {
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeEnd.Before(*f.RangeStart) {
		return ErrInvalidRange
	}
	return nil
}

// Hit identifies a public request to be reported to the statistics service.
type Hit struct {
	URI string
	IP  string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	// GetByIDForUpdate returns the event and holds a row lock on it until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Event, error)
	// Update writes the editable fields and the lifecycle state. Counters are
	// written with SetConfirmedRequests and SetRating.
	Update(ctx context.Context, event *Event) error
	SetConfirmedRequests(ctx context.Context, id int64, confirmed int) error
	SetRating(ctx context.Context, id int64, rating int64) error
	ListByInitiator(ctx context.Context, initiatorID int64, page PaginationParams) ([]*Event, error)
	Search(ctx context.Context, filter EventFilter) ([]*Event, error)
}

// EventService defines the business logic for the event lifecycle.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, patch EventPatch) (*Event, error)
	UpdateEventByModerator(ctx context.Context, eventID int64, patch EventPatch) (*Event, error)
	GetInitiatorEvent(ctx context.Context, initiatorID, eventID int64) (*Event, error)
	ListInitiatorEvents(ctx context.Context, initiatorID int64, page PaginationParams) ([]*Event, error)
	SearchEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListPublishedEvents(ctx context.Context, filter EventFilter, hit Hit) ([]*Event, error)
	GetPublishedEvent(ctx context.Context, eventID int64, hit Hit) (*Event, error)
}
