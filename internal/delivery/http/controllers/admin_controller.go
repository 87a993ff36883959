package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// EventFullListSuccessResponse is the success envelope for moderator event searches.
type EventFullListSuccessResponse struct {
	Data  []EventFullResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// AdminController serves moderation endpoints under /admin. Routes are
// expected to sit behind middleware.RequireModerator.
type AdminController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewAdminController(logger *slog.Logger, svc domain.EventService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// SearchEvents godoc
// @Summary Search events for moderation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []int false "Initiator IDs" collectionFormat(csv)
// @Param states query []string false "States" collectionFormat(csv)
// @Param categories query []int false "Category IDs" collectionFormat(csv)
// @Param rangeStart query string false "Earliest event date (2006-01-02 15:04:05)"
// @Param rangeEnd query string false "Latest event date (2006-01-02 15:04:05)"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} controllers.EventFullListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events [get]
func (c *AdminController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAdminFilter(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	events, err := c.Service.SearchEvents(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFullList(events))
}

// UpdateEvent godoc
// @Summary Moderate or edit an event
// @Description PUBLISH_EVENT publishes a PENDING event, REJECT_EVENT cancels it. Field edits are rejected once the event is published.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param body body UpdateEventAdminRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/events/{eventID} [patch]
func (c *AdminController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathInt64(r, "eventID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req UpdateEventAdminRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch, err := req.toPatch(req.StateAction)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	event, err := c.Service.UpdateEventByModerator(r.Context(), eventID, patch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFull(event))
}

func parseAdminFilter(r *http.Request) (domain.EventFilter, error) {
	var f domain.EventFilter
	var err error
	if f.Users, err = helpers.QueryInt64List(r, "users"); err != nil {
		return f, err
	}
	for _, s := range helpers.QueryList(r, "states") {
		state := domain.EventState(s)
		switch state {
		case domain.EventStatePending, domain.EventStatePublished, domain.EventStateCanceled:
			f.States = append(f.States, state)
		default:
			return f, fmt.Errorf("%w: unknown state %s", domain.ErrInvalidField, s)
		}
	}
	if err := parseCommonFilter(r, &f); err != nil {
		return f, err
	}
	return f, nil
}

// parseCommonFilter reads the parameters moderator and public searches share.
func parseCommonFilter(r *http.Request, f *domain.EventFilter) error {
	var err error
	if f.Categories, err = helpers.QueryInt64List(r, "categories"); err != nil {
		return err
	}
	if f.RangeStart, err = helpers.QueryTime(r, "rangeStart"); err != nil {
		return err
	}
	if f.RangeEnd, err = helpers.QueryTime(r, "rangeEnd"); err != nil {
		return err
	}
	f.Page, err = helpers.ParsePagination(r)
	return err
}
