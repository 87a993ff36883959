package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	testEventDate = time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	testCreatedOn = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
)

func sampleEvent(id int64) *domain.Event {
	e := domain.NewEvent(3, 2, "Jazz night", "An evening of live jazz music", "Three bands and a late jam session",
		testEventDate, domain.Location{Lat: 55.75, Lon: 37.61}, true, 50, true, testCreatedOn)
	e.ID = id
	return e
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err    error
	event  *domain.Event
	events []*domain.Event

	lastCreate      *domain.Event
	lastInitiatorID int64
	lastEventID     int64
	lastPatch       domain.EventPatch
	lastPage        domain.PaginationParams
	lastFilter      domain.EventFilter
	lastHit         domain.Hit
}

func (f *fakeEventService) CreateEvent(_ context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.err != nil {
		return f.err
	}
	event.ID = 11
	event.CreatedOn = testCreatedOn
	return nil
}

func (f *fakeEventService) UpdateEventByInitiator(_ context.Context, initiatorID, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	f.lastInitiatorID, f.lastEventID, f.lastPatch = initiatorID, eventID, patch
	return f.event, f.err
}

func (f *fakeEventService) UpdateEventByModerator(_ context.Context, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	f.lastEventID, f.lastPatch = eventID, patch
	return f.event, f.err
}

func (f *fakeEventService) GetInitiatorEvent(_ context.Context, initiatorID, eventID int64) (*domain.Event, error) {
	f.lastInitiatorID, f.lastEventID = initiatorID, eventID
	return f.event, f.err
}

func (f *fakeEventService) ListInitiatorEvents(_ context.Context, initiatorID int64, page domain.PaginationParams) ([]*domain.Event, error) {
	f.lastInitiatorID, f.lastPage = initiatorID, page
	return f.events, f.err
}

func (f *fakeEventService) SearchEvents(_ context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.lastFilter = filter
	return f.events, f.err
}

func (f *fakeEventService) ListPublishedEvents(_ context.Context, filter domain.EventFilter, hit domain.Hit) ([]*domain.Event, error) {
	f.lastFilter, f.lastHit = filter, hit
	return f.events, f.err
}

func (f *fakeEventService) GetPublishedEvent(_ context.Context, eventID int64, hit domain.Hit) (*domain.Event, error) {
	f.lastEventID, f.lastHit = eventID, hit
	return f.event, f.err
}

// fakeAdmissionService implements domain.AdmissionService for handler tests.
type fakeAdmissionService struct {
	err      error
	request  *domain.ParticipationRequest
	requests []*domain.ParticipationRequest
	result   *domain.RequestStatusUpdateResult

	lastUserID    int64
	lastEventID   int64
	lastRequestID int64
	lastDecision  domain.RequestDecision
}

func (f *fakeAdmissionService) RequestJoin(_ context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	return f.request, f.err
}

func (f *fakeAdmissionService) CancelRequest(_ context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastRequestID = userID, requestID
	return f.request, f.err
}

func (f *fakeAdmissionService) BatchDecide(_ context.Context, initiatorID, eventID int64, decision domain.RequestDecision) (*domain.RequestStatusUpdateResult, error) {
	f.lastUserID, f.lastEventID, f.lastDecision = initiatorID, eventID, decision
	return f.result, f.err
}

func (f *fakeAdmissionService) ListRequestsForEvent(_ context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastEventID = initiatorID, eventID
	return f.requests, f.err
}

func (f *fakeAdmissionService) ListRequestsForRequester(_ context.Context, userID int64) ([]*domain.ParticipationRequest, error) {
	f.lastUserID = userID
	return f.requests, f.err
}

// fakeEngagementService implements domain.EngagementService for handler tests.
type fakeEngagementService struct {
	err   error
	event *domain.Event

	lastOp          string
	lastInitiatorID int64
	lastEventID     int64
	lastVoter       int64
}

func (f *fakeEngagementService) record(op string, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	f.lastOp, f.lastInitiatorID, f.lastEventID, f.lastVoter = op, initiatorID, eventID, voterID
	return f.event, f.err
}

func (f *fakeEngagementService) AddLike(_ context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return f.record("add-like", initiatorID, eventID, voterID)
}

func (f *fakeEngagementService) AddDislike(_ context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return f.record("add-dislike", initiatorID, eventID, voterID)
}

func (f *fakeEngagementService) RemoveLike(_ context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return f.record("remove-like", initiatorID, eventID, voterID)
}

func (f *fakeEngagementService) RemoveDislike(_ context.Context, initiatorID, eventID, voterID int64) (*domain.Event, error) {
	return f.record("remove-dislike", initiatorID, eventID, voterID)
}

func newRequest(method, target, body string, pathValues map[string]string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, "http://test"+target, rd)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

// decodeData decodes a success envelope's data into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	require.Nil(t, envelope.Error, "success response must have error nil")
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, dest))
}

// decodeError returns the error object of an error envelope.
func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *helpers.APIError {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	require.NotNil(t, envelope.Error, "error response must have error set")
	require.Nil(t, envelope.Data)
	return envelope.Error
}
