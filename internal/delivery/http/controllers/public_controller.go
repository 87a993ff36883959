package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// PublicController serves published events to anonymous visitors. Every
// call is reported to the statistics service as a hit.
type PublicController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewPublicController(logger *slog.Logger, svc domain.EventService) *PublicController {
	return &PublicController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary Search published events
// @Description Only events dated from rangeStart (now by default) are returned.
// @Tags public
// @Produce json
// @Param text query string false "Case-insensitive search in annotation and description"
// @Param categories query []int false "Category IDs" collectionFormat(csv)
// @Param paid query bool false "Paid events only (true) or free only (false)"
// @Param rangeStart query string false "Earliest event date (2006-01-02 15:04:05)"
// @Param rangeEnd query string false "Latest event date (2006-01-02 15:04:05)"
// @Param onlyAvailable query bool false "Skip events whose participant limit is reached" default(false)
// @Param sort query string false "EVENT_DATE or VIEWS" Enums(EVENT_DATE, VIEWS)
// @Param from query int false "Offset" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} controllers.EventShortListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *PublicController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePublicFilter(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	events, err := c.Service.ListPublishedEvents(r.Context(), filter, hitOf(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventShortList(events))
}

// GetEvent godoc
// @Summary Get a published event
// @Tags public
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *PublicController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathInt64(r, "eventID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	event, err := c.Service.GetPublishedEvent(r.Context(), eventID, hitOf(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFull(event))
}

func hitOf(r *http.Request) domain.Hit {
	return domain.Hit{URI: r.URL.Path, IP: helpers.ClientIP(r)}
}

func parsePublicFilter(r *http.Request) (domain.EventFilter, error) {
	q := r.URL.Query()
	f := domain.EventFilter{Text: q.Get("text")}
	var err error
	if f.Paid, err = helpers.QueryBool(r, "paid"); err != nil {
		return f, err
	}
	available, err := helpers.QueryBool(r, "onlyAvailable")
	if err != nil {
		return f, err
	}
	f.OnlyAvailable = available != nil && *available
	switch sort := domain.EventSort(q.Get("sort")); sort {
	case "", domain.EventSortDate, domain.EventSortViews:
		f.Sort = sort
	default:
		return f, fmt.Errorf("%w: sort must be EVENT_DATE or VIEWS", domain.ErrInvalidField)
	}
	if err := parseCommonFilter(r, &f); err != nil {
		return f, err
	}
	return f, nil
}
