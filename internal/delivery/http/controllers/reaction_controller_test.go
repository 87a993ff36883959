package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"explorewithme/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionController(t *testing.T) {
	rated := sampleEvent(5)
	rated.State = domain.EventStatePublished
	rated.Rating = 1

	tests := []struct {
		name       string
		method     string
		kind       string
		handler    func(c *ReactionController) http.HandlerFunc
		fakeErr    error
		wantOp     string
		wantStatus int
	}{
		{name: "add like", method: http.MethodPut, kind: "likes", handler: func(c *ReactionController) http.HandlerFunc { return c.AddLike }, wantOp: "add-like", wantStatus: http.StatusOK},
		{name: "add dislike", method: http.MethodPut, kind: "dislikes", handler: func(c *ReactionController) http.HandlerFunc { return c.AddDislike }, wantOp: "add-dislike", wantStatus: http.StatusOK},
		{name: "remove like", method: http.MethodDelete, kind: "likes", handler: func(c *ReactionController) http.HandlerFunc { return c.RemoveLike }, wantOp: "remove-like", wantStatus: http.StatusOK},
		{name: "remove dislike", method: http.MethodDelete, kind: "dislikes", handler: func(c *ReactionController) http.HandlerFunc { return c.RemoveDislike }, wantOp: "remove-dislike", wantStatus: http.StatusOK},
		{name: "already liked", method: http.MethodPut, kind: "likes", handler: func(c *ReactionController) http.HandlerFunc { return c.AddLike }, fakeErr: domain.ErrAlreadyLiked, wantOp: "add-like", wantStatus: http.StatusConflict},
		{name: "self reaction", method: http.MethodPut, kind: "dislikes", handler: func(c *ReactionController) http.HandlerFunc { return c.AddDislike }, fakeErr: domain.ErrSelfReaction, wantOp: "add-dislike", wantStatus: http.StatusConflict},
		{name: "nothing to remove", method: http.MethodDelete, kind: "likes", handler: func(c *ReactionController) http.HandlerFunc { return c.RemoveLike }, fakeErr: domain.ReactionNotFound(domain.ReactionLike, 5), wantOp: "remove-like", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEngagementService{event: rated, err: tt.fakeErr}
			ctrl := NewReactionController(testLogger, fake)
			req := newRequest(tt.method, "/users/3/events/5/"+tt.kind+"/9", "", map[string]string{"userID": "3", "eventID": "5", "voterID": "9"})
			rr := httptest.NewRecorder()

			tt.handler(ctrl)(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantOp, fake.lastOp)
			assert.Equal(t, int64(3), fake.lastInitiatorID)
			assert.Equal(t, int64(5), fake.lastEventID)
			assert.Equal(t, int64(9), fake.lastVoter)
			if tt.wantStatus != http.StatusOK {
				decodeError(t, rr)
				return
			}
			var data EventFullResponse
			decodeData(t, rr, &data)
			assert.Equal(t, int64(1), data.EventRating)
		})
	}
}

func TestReactionController_BadVoterID(t *testing.T) {
	fake := &fakeEngagementService{}
	ctrl := NewReactionController(testLogger, fake)
	req := newRequest(http.MethodPut, "/users/3/events/5/likes/me", "", map[string]string{"userID": "3", "eventID": "5", "voterID": "me"})
	rr := httptest.NewRecorder()

	ctrl.AddLike(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, fake.lastOp)
}
