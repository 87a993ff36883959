package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// ReactionController serves likes and dislikes under
// /users/{userID}/events/{eventID}/{likes,dislikes}/{voterID}. Every
// endpoint responds with the event and its recomputed rating.
type ReactionController struct {
	Logger  *slog.Logger
	Service domain.EngagementService
}

func NewReactionController(logger *slog.Logger, svc domain.EngagementService) *ReactionController {
	return &ReactionController{
		Logger:  logger,
		Service: svc,
	}
}

type reactionFunc func(ctx context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error)

func (c *ReactionController) handle(w http.ResponseWriter, r *http.Request, fn reactionFunc) {
	userID, eventID, err := userAndEvent(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	voterID, err := helpers.PathInt64(r, "voterID")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	event, err := fn(r.Context(), userID, eventID, voterID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFull(event))
}

// AddLike godoc
// @Summary Like an event
// @Description Replaces an existing dislike by the same voter.
// @Tags reactions
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Param voterID path int true "Voter ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID}/likes/{voterID} [put]
func (c *ReactionController) AddLike(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.Service.AddLike)
}

// RemoveLike godoc
// @Summary Remove a like
// @Tags reactions
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Param voterID path int true "Voter ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID}/likes/{voterID} [delete]
func (c *ReactionController) RemoveLike(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.Service.RemoveLike)
}

// AddDislike godoc
// @Summary Dislike an event
// @Description Replaces an existing like by the same voter.
// @Tags reactions
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Param voterID path int true "Voter ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/events/{eventID}/dislikes/{voterID} [put]
func (c *ReactionController) AddDislike(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.Service.AddDislike)
}

// RemoveDislike godoc
// @Summary Remove a dislike
// @Tags reactions
// @Produce json
// @Param userID path int true "Initiator ID"
// @Param eventID path int true "Event ID"
// @Param voterID path int true "Voter ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events/{eventID}/dislikes/{voterID} [delete]
func (c *ReactionController) RemoveDislike(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.Service.RemoveDislike)
}
