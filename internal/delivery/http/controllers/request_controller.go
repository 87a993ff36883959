package controllers

import (
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// RequestSuccessResponse is the success envelope for one participation request.
type RequestSuccessResponse struct {
	Data  RequestResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RequestListSuccessResponse is the success envelope for request listings.
type RequestListSuccessResponse struct {
	Data  []RequestResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RequestStatusUpdateSuccessResponse is the success envelope for a batch decision.
type RequestStatusUpdateSuccessResponse struct {
	Data  RequestStatusUpdateResponse `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// RequestController serves participation requests, both the requester's side
// and the initiator's decisions.
type RequestController struct {
	Logger  *slog.Logger
	Service domain.AdmissionService
}

func NewRequestController(logger *slog.Logger, svc domain.AdmissionService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateRequest godoc
// @Summary Request participation in an event
// @Description The request is CONFIRMED right away when the event has no participant limit or does not moderate requests, PENDING otherwise.
// @Tags requests
// @Produce json
// @Param userID path int true "Requester ID"
// @Param eventId query int true "Event ID"
// @Success 201 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathInt64(r, "userID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	eventID, err := helpers.QueryInt64(r, "eventId")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	req, err := c.Service.RequestJoin(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toRequest(req))
}

// ListUserRequests godoc
// @Summary List the user's participation requests
// @Tags requests
// @Produce json
// @Param userID path int true "Requester ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/requests [get]
func (c *RequestController) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathInt64(r, "userID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	requests, err := c.Service.ListRequestsForRequester(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toRequestList(requests))
}

// CancelRequest godoc
// @Summary Cancel a participation request
// @Tags requests
// @Produce json
// @Param userID path int true "Requester ID"
// @Param requestID path int true "Request ID"
// @Success 200 {object} controllers.RequestSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/requests/{requestID}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathInt64(r, "userID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	requestID, err := helpers.PathInt64(r, "requestID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	req, err := c.Service.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toRequest(req))
}

// ListEventRequests godoc
// @Summary List requests to one of the initiator's events
// @Tags requests
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID}/requests [get]
func (c *RequestController) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userAndEvent(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	requests, err := c.Service.ListRequestsForEvent(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toRequestList(requests))
}

// DecideRequests godoc
// @Summary Confirm or reject pending requests
// @Description Applies status to every listed PENDING request, in order. Either all requests change or none do; confirming more requests than the free capacity is a conflict.
// @Tags requests
// @Accept json
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Param body body RequestStatusUpdateRequest true "Request ids and target status"
// @Success 200 {object} controllers.RequestStatusUpdateSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID}/requests [patch]
func (c *RequestController) DecideRequests(w http.ResponseWriter, r *http.Request) {
	userID, eventID, err := userAndEvent(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req RequestStatusUpdateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.BatchDecide(r.Context(), userID, eventID, domain.RequestDecision{
		RequestIDs: req.RequestIDs,
		Status:     domain.RequestStatus(req.Status),
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RequestStatusUpdateResponse{
		ConfirmedRequests: toRequestList(result.ConfirmedRequests),
		RejectedRequests:  toRequestList(result.RejectedRequests),
	})
}
