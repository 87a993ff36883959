package controllers

import (
	"time"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// LocationDTO is an event venue.
type LocationDTO struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// NewEventRequest is the request body for POST /users/{userID}/events.
// Omitted paid, participantLimit and requestModeration default to false, 0 and true.
type NewEventRequest struct {
	Annotation        string       `json:"annotation" validate:"required,min=20,max=2000"`
	Category          int64        `json:"category" validate:"required,gt=0"`
	Description       string       `json:"description" validate:"required,min=20,max=7000"`
	EventDate         string       `json:"eventDate" validate:"required,datetime=2006-01-02 15:04:05"`
	Location          *LocationDTO `json:"location" validate:"required"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	Title             string       `json:"title" validate:"required,min=3,max=120"`
}

func (req NewEventRequest) toEvent(initiatorID int64) (*domain.Event, error) {
	date, err := helpers.ParseTime(req.EventDate)
	if err != nil {
		return nil, err
	}
	paid, limit, moderation := false, 0, true
	if req.Paid != nil {
		paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		limit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}
	loc := domain.Location{Lat: req.Location.Lat, Lon: req.Location.Lon}
	return domain.NewEvent(initiatorID, req.Category, req.Title, req.Annotation, req.Description,
		date, loc, paid, limit, moderation, time.Time{}), nil
}

// eventChanges are the editable fields shared by initiator and moderator updates.
// All fields are optional; omitted fields are unchanged.
type eventChanges struct {
	Annotation        *string      `json:"annotation" validate:"omitempty,min=20,max=2000"`
	Category          *int64       `json:"category" validate:"omitempty,gt=0"`
	Description       *string      `json:"description" validate:"omitempty,min=20,max=7000"`
	EventDate         *string      `json:"eventDate" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	Location          *LocationDTO `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit" validate:"omitempty,gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	Title             *string      `json:"title" validate:"omitempty,min=3,max=120"`
}

func (c eventChanges) toPatch(action *string) (domain.EventPatch, error) {
	p := domain.EventPatch{
		Title:             c.Title,
		Annotation:        c.Annotation,
		Description:       c.Description,
		CategoryID:        c.Category,
		Paid:              c.Paid,
		ParticipantLimit:  c.ParticipantLimit,
		RequestModeration: c.RequestModeration,
	}
	if c.Location != nil {
		p.Location = &domain.Location{Lat: c.Location.Lat, Lon: c.Location.Lon}
	}
	if c.EventDate != nil {
		date, err := helpers.ParseTime(*c.EventDate)
		if err != nil {
			return domain.EventPatch{}, err
		}
		p.EventDate = &date
	}
	if action != nil {
		a := domain.StateAction(*action)
		p.StateAction = &a
	}
	return p, nil
}

// UpdateEventUserRequest is the request body for PATCH /users/{userID}/events/{eventID}.
type UpdateEventUserRequest struct {
	eventChanges
	StateAction *string `json:"stateAction" validate:"omitempty,oneof=SEND_TO_REVIEW CANCEL_REVIEW"`
}

// UpdateEventAdminRequest is the request body for PATCH /admin/events/{eventID}.
type UpdateEventAdminRequest struct {
	eventChanges
	StateAction *string `json:"stateAction" validate:"omitempty,oneof=PUBLISH_EVENT REJECT_EVENT"`
}

// EventFullResponse is the detailed view of an event.
type EventFullResponse struct {
	ID                int64       `json:"id"`
	Annotation        string      `json:"annotation"`
	Category          int64       `json:"category"`
	ConfirmedRequests int         `json:"confirmedRequests"`
	CreatedOn         string      `json:"createdOn"`
	Description       string      `json:"description"`
	EventDate         string      `json:"eventDate"`
	Initiator         int64       `json:"initiator"`
	Location          LocationDTO `json:"location"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participantLimit"`
	PublishedOn       string      `json:"publishedOn,omitempty"`
	RequestModeration bool        `json:"requestModeration"`
	State             string      `json:"state"`
	Title             string      `json:"title"`
	Views             int64       `json:"views"`
	EventRating       int64       `json:"eventRating"`
}

func toEventFull(e *domain.Event) EventFullResponse {
	return EventFullResponse{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          e.CategoryID,
		ConfirmedRequests: e.ConfirmedRequests,
		CreatedOn:         helpers.FormatTime(e.CreatedOn),
		Description:       e.Description,
		EventDate:         helpers.FormatTime(e.EventDate),
		Initiator:         e.InitiatorID,
		Location:          LocationDTO{Lat: e.Lat, Lon: e.Lon},
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		PublishedOn:       helpers.FormatTimePtr(e.PublishedOn),
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
		Title:             e.Title,
		Views:             e.Views,
		EventRating:       e.Rating,
	}
}

func toEventFullList(events []*domain.Event) []EventFullResponse {
	out := make([]EventFullResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventFull(e))
	}
	return out
}

// EventShortResponse is the list view of an event.
type EventShortResponse struct {
	ID                int64  `json:"id"`
	Annotation        string `json:"annotation"`
	Category          int64  `json:"category"`
	ConfirmedRequests int    `json:"confirmedRequests"`
	EventDate         string `json:"eventDate"`
	Initiator         int64  `json:"initiator"`
	Paid              bool   `json:"paid"`
	Title             string `json:"title"`
	Views             int64  `json:"views"`
	EventRating       int64  `json:"eventRating"`
}

func toEventShortList(events []*domain.Event) []EventShortResponse {
	out := make([]EventShortResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventShortResponse{
			ID:                e.ID,
			Annotation:        e.Annotation,
			Category:          e.CategoryID,
			ConfirmedRequests: e.ConfirmedRequests,
			EventDate:         helpers.FormatTime(e.EventDate),
			Initiator:         e.InitiatorID,
			Paid:              e.Paid,
			Title:             e.Title,
			Views:             e.Views,
			EventRating:       e.Rating,
		})
	}
	return out
}

// RequestResponse is a participation request.
type RequestResponse struct {
	ID        int64  `json:"id"`
	Event     int64  `json:"event"`
	Requester int64  `json:"requester"`
	Created   string `json:"created"`
	Status    string `json:"status"`
}

func toRequest(r *domain.ParticipationRequest) RequestResponse {
	return RequestResponse{
		ID:        r.ID,
		Event:     r.EventID,
		Requester: r.RequesterID,
		Created:   helpers.FormatTime(r.Created),
		Status:    string(r.Status),
	}
}

func toRequestList(requests []*domain.ParticipationRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, toRequest(r))
	}
	return out
}

// RequestStatusUpdateRequest is the request body for PATCH /users/{userID}/events/{eventID}/requests.
type RequestStatusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status" validate:"required"`
}

// RequestStatusUpdateResponse partitions the requests a decision touched.
type RequestStatusUpdateResponse struct {
	ConfirmedRequests []RequestResponse `json:"confirmedRequests"`
	RejectedRequests  []RequestResponse `json:"rejectedRequests"`
}
