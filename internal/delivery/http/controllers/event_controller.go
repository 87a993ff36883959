package controllers

import (
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// EventFullSuccessResponse is the success envelope for endpoints returning one event.
type EventFullSuccessResponse struct {
	Data  EventFullResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventShortListSuccessResponse is the success envelope for event listings.
type EventShortListSuccessResponse struct {
	Data  []EventShortResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// EventController serves the initiator's own events under /users/{userID}/events.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a PENDING event initiated by the user. eventDate must not be in the past.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param event body NewEventRequest true "Event data"
// @Success 201 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (user or category)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathInt64(r, "userID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := req.toEvent(userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toEventFull(event))
}

// ListEvents godoc
// @Summary List the initiator's events
// @Tags events
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} controllers.EventShortListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathInt64(r, "userID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	page, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	events, err := c.Service.ListInitiatorEvents(r.Context(), userID, page)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventShortList(events))
}

// GetEvent godoc
// @Summary Get one of the initiator's events
// @Tags events
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userAndEvent(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	event, err := c.Service.GetInitiatorEvent(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFull(event))
}

// UpdateEvent godoc
// @Summary Update one of the initiator's events
// @Description Edits fields of a PENDING or CANCELED event. stateAction SEND_TO_REVIEW returns it to moderation, CANCEL_REVIEW cancels it.
// @Tags events
// @Accept json
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Param body body UpdateEventUserRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event is published)"
// @Router /users/{userID}/events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userAndEvent(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req UpdateEventUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch, err := req.toPatch(req.StateAction)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	event, err := c.Service.UpdateEventByInitiator(r.Context(), userID, eventID, patch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFull(event))
}

func userAndEvent(r *http.Request) (userID, eventID int64, err error) {
	if userID, err = helpers.PathInt64(r, "userID"); err != nil {
		return 0, 0, err
	}
	if eventID, err = helpers.PathInt64(r, "eventID"); err != nil {
		return 0, 0, err
	}
	return userID, eventID, nil
}
