package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"explorewithme/internal/domain"
)

var errBoom = errors.New("boom")

type txMarker struct{}

// memStore is an in-memory database shared by the fake repositories. The
// fake transactor holds mu for the whole unit of work and restores a
// snapshot when it fails, so fakes only lock when called outside of it.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]domain.User
	categories map[int64]domain.Category
	events     map[int64]domain.Event
	requests   map[int64]domain.ParticipationRequest
	reactions  map[int64]domain.Reaction
	failOn     map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:     1000,
		users:      make(map[int64]domain.User),
		categories: make(map[int64]domain.Category),
		events:     make(map[int64]domain.Event),
		requests:   make(map[int64]domain.ParticipationRequest),
		reactions:  make(map[int64]domain.Reaction),
		failOn:     make(map[string]error),
	}
}

func (s *memStore) do(ctx context.Context, op string, fn func() error) error {
	if ctx.Value(txMarker{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.failOn[op]; err != nil {
		return err
	}
	return fn()
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(id int64, name string) {
	s.users[id] = domain.User{ID: id, Name: name, Email: fmt.Sprintf("%s@example.com", name)}
}

func (s *memStore) addEvent(e domain.Event) *domain.Event {
	s.events[e.ID] = e
	return &e
}

func (s *memStore) addRequest(r domain.ParticipationRequest) {
	s.requests[r.ID] = r
}

func (s *memStore) event(id int64) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *memStore) request(id int64) domain.ParticipationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

func (s *memStore) user(id int64) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) reactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reactions)
}

type snapshot struct {
	nextID    int64
	users     map[int64]domain.User
	events    map[int64]domain.Event
	requests  map[int64]domain.ParticipationRequest
	reactions map[int64]domain.Reaction
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type fakeTransactor struct {
	store   *memStore
	commits int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	s := t.store
	snap := snapshot{
		nextID:    s.nextID,
		users:     copyMap(s.users),
		events:    copyMap(s.events),
		requests:  copyMap(s.requests),
		reactions: copyMap(s.reactions),
	}
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.nextID, s.users, s.events, s.requests, s.reactions = snap.nextID, snap.users, snap.events, snap.requests, snap.reactions
		return err
	}
	t.commits++
	return nil
}

type fakeEventRepo struct{ s *memStore }

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	return f.s.do(ctx, "events.Create", func() error {
		e.ID = f.s.id()
		f.s.events[e.ID] = *e
		return nil
	})
}

func (f *fakeEventRepo) get(ctx context.Context, op string, id int64) (*domain.Event, error) {
	var out *domain.Event
	err := f.s.do(ctx, op, func() error {
		e, ok := f.s.events[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return f.get(ctx, "events.GetByID", id)
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	return f.get(ctx, "events.GetByIDForUpdate", id)
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	return f.s.do(ctx, "events.Update", func() error {
		cur, ok := f.s.events[e.ID]
		if !ok {
			return domain.ErrNotFound
		}
		next := *e
		next.ConfirmedRequests = cur.ConfirmedRequests
		next.Rating = cur.Rating
		f.s.events[e.ID] = next
		return nil
	})
}

func (f *fakeEventRepo) SetConfirmedRequests(ctx context.Context, id int64, confirmed int) error {
	return f.s.do(ctx, "events.SetConfirmedRequests", func() error {
		e, ok := f.s.events[id]
		if !ok {
			return domain.ErrNotFound
		}
		e.ConfirmedRequests = confirmed
		f.s.events[id] = e
		return nil
	})
}

func (f *fakeEventRepo) SetRating(ctx context.Context, id int64, rating int64) error {
	return f.s.do(ctx, "events.SetRating", func() error {
		e, ok := f.s.events[id]
		if !ok {
			return domain.ErrNotFound
		}
		e.Rating = rating
		f.s.events[id] = e
		return nil
	})
}

func (f *fakeEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PaginationParams) ([]*domain.Event, error) {
	return f.Search(ctx, domain.EventFilter{Users: []int64{initiatorID}, Page: page})
}

func (f *fakeEventRepo) Search(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	out := make([]*domain.Event, 0)
	err := f.s.do(ctx, "events.Search", func() error {
		for _, e := range f.s.events {
			if matches(e, filter) {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Sort == domain.EventSortDate {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].ID < out[j].ID
	})
	from := min(filter.Page.Offset(), len(out))
	to := min(from+filter.Page.Limit(), len(out))
	return out[from:to], nil
}

func matches(e domain.Event, f domain.EventFilter) bool {
	if len(f.Users) > 0 && !contains(f.Users, e.InitiatorID) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, e.CategoryID) {
		return false
	}
	if len(f.States) > 0 && !contains(f.States, e.State) {
		return false
	}
	if f.Paid != nil && e.Paid != *f.Paid {
		return false
	}
	if f.RangeStart != nil && e.EventDate.Before(*f.RangeStart) {
		return false
	}
	if f.RangeEnd != nil && e.EventDate.After(*f.RangeEnd) {
		return false
	}
	if f.OnlyAvailable && !e.HasCapacity() {
		return false
	}
	return true
}

func contains[T comparable](xs []T, x T) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

type fakeRequestRepo struct{ s *memStore }

func (f *fakeRequestRepo) Create(ctx context.Context, r *domain.ParticipationRequest) error {
	return f.s.do(ctx, "requests.Create", func() error {
		for _, cur := range f.s.requests {
			if cur.EventID == r.EventID && cur.RequesterID == r.RequesterID && cur.Status != domain.RequestStatusCanceled {
				return domain.ErrDuplicateRequest
			}
		}
		r.ID = f.s.id()
		f.s.requests[r.ID] = *r
		return nil
	})
}

func (f *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	var out *domain.ParticipationRequest
	err := f.s.do(ctx, "requests.GetByIDForUpdate", func() error {
		r, ok := f.s.requests[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &r
		return nil
	})
	return out, err
}

func (f *fakeRequestRepo) LockByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	return f.list(ctx, "requests.LockByIDs", func(r domain.ParticipationRequest) bool { return contains(ids, r.ID) })
}

func (f *fakeRequestRepo) FindActive(ctx context.Context, eventID, requesterID int64) (*domain.ParticipationRequest, error) {
	found, err := f.list(ctx, "requests.FindActive", func(r domain.ParticipationRequest) bool {
		return r.EventID == eventID && r.RequesterID == requesterID && r.Status != domain.RequestStatusCanceled
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}
	return found[0], nil
}

func (f *fakeRequestRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	return f.list(ctx, "requests.ListByEvent", func(r domain.ParticipationRequest) bool { return r.EventID == eventID })
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return f.list(ctx, "requests.ListByRequester", func(r domain.ParticipationRequest) bool { return r.RequesterID == requesterID })
}

func (f *fakeRequestRepo) list(ctx context.Context, op string, keep func(domain.ParticipationRequest) bool) ([]*domain.ParticipationRequest, error) {
	out := make([]*domain.ParticipationRequest, 0)
	err := f.s.do(ctx, op, func() error {
		for _, r := range f.s.requests {
			if keep(r) {
				r := r
				out = append(out, &r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	return f.s.do(ctx, "requests.UpdateStatus", func() error {
		for _, id := range ids {
			r, ok := f.s.requests[id]
			if !ok {
				return domain.ErrNotFound
			}
			r.Status = status
			f.s.requests[id] = r
		}
		return nil
	})
}

type fakeUserRepo struct{ s *memStore }

func (f *fakeUserRepo) get(ctx context.Context, op string, id int64) (*domain.User, error) {
	var out *domain.User
	err := f.s.do(ctx, op, func() error {
		u, ok := f.s.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return f.get(ctx, "users.GetByID", id)
}

func (f *fakeUserRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	return f.get(ctx, "users.GetByIDForUpdate", id)
}

func (f *fakeUserRepo) SetRating(ctx context.Context, id int64, rating int64) error {
	return f.s.do(ctx, "users.SetRating", func() error {
		u, ok := f.s.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		u.Rating = rating
		f.s.users[id] = u
		return nil
	})
}

type fakeCategoryRepo struct{ s *memStore }

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var out *domain.Category
	err := f.s.do(ctx, "categories.GetByID", func() error {
		c, ok := f.s.categories[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

type fakeReactionRepo struct{ s *memStore }

func (f *fakeReactionRepo) Create(ctx context.Context, rc *domain.Reaction) error {
	return f.s.do(ctx, "reactions.Create", func() error {
		for _, cur := range f.s.reactions {
			if cur.EventID == rc.EventID && cur.VoterID == rc.VoterID {
				return rc.Reaction.AlreadyReacted()
			}
		}
		rc.ID = f.s.id()
		f.s.reactions[rc.ID] = *rc
		return nil
	})
}

func (f *fakeReactionRepo) Get(ctx context.Context, eventID, voterID int64) (*domain.Reaction, error) {
	var out *domain.Reaction
	err := f.s.do(ctx, "reactions.Get", func() error {
		for _, rc := range f.s.reactions {
			if rc.EventID == eventID && rc.VoterID == voterID {
				rc := rc
				out = &rc
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (f *fakeReactionRepo) Delete(ctx context.Context, id int64) error {
	return f.s.do(ctx, "reactions.Delete", func() error {
		if _, ok := f.s.reactions[id]; !ok {
			return domain.ErrNotFound
		}
		delete(f.s.reactions, id)
		return nil
	})
}

func (f *fakeReactionRepo) rating(ctx context.Context, op string, keep func(domain.Reaction) bool) (int64, error) {
	var total int64
	err := f.s.do(ctx, op, func() error {
		for _, rc := range f.s.reactions {
			if !keep(rc) {
				continue
			}
			if rc.Reaction == domain.ReactionLike {
				total++
			} else {
				total--
			}
		}
		return nil
	})
	return total, err
}

func (f *fakeReactionRepo) EventRating(ctx context.Context, eventID int64) (int64, error) {
	return f.rating(ctx, "reactions.EventRating", func(rc domain.Reaction) bool { return rc.EventID == eventID })
}

func (f *fakeReactionRepo) InitiatorRating(ctx context.Context, userID int64) (int64, error) {
	return f.rating(ctx, "reactions.InitiatorRating", func(rc domain.Reaction) bool { return rc.EventUserID == userID })
}

// fakeStats records hits and serves fixed view counts.
type fakeStats struct {
	mu      sync.Mutex
	hits    []domain.Hit
	lookups [][]string
	views   map[string]int64
	err     error
}

func (f *fakeStats) RecordHit(ctx context.Context, uri, ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, domain.Hit{URI: uri, IP: ip})
}

func (f *fakeStats) CountViews(ctx context.Context, uris []string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, append([]string(nil), uris...))
	if f.err != nil {
		return nil, f.err
	}
	views := make(map[string]int64, len(uris))
	for _, uri := range uris {
		views[uri] = f.views[uri]
	}
	return views, nil
}

// fakeEmailService records sent emails. A non-nil release holds every send
// until it is closed.
type fakeEmailService struct {
	mu        sync.Mutex
	decisions []*domain.RequestDecisionEmailData
	moderated []*domain.EventModeratedEmailData
	ctxErrs   []error
	release   chan struct{}
	err       error
}

func (f *fakeEmailService) SendRequestDecision(ctx context.Context, data *domain.RequestDecisionEmailData) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, data)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

func (f *fakeEmailService) SendEventModerated(ctx context.Context, data *domain.EventModeratedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moderated = append(f.moderated, data)
	return f.err
}

var (
	fixedNow  = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	eventDate = fixedNow.Add(72 * time.Hour)
)

const (
	initiatorID int64 = 1
	userA       int64 = 2
	userB       int64 = 3
	userC       int64 = 4
	categoryID  int64 = 7
)

// world is a seeded store with every fake wired over it.
type world struct {
	store      *memStore
	tx         *fakeTransactor
	events     *fakeEventRepo
	requests   *fakeRequestRepo
	users      *fakeUserRepo
	categories *fakeCategoryRepo
	reactions  *fakeReactionRepo
	stats      *fakeStats
	email      *fakeEmailService
}

func newWorld() *world {
	s := newMemStore()
	s.addUser(initiatorID, "ini")
	s.addUser(userA, "alice")
	s.addUser(userB, "bob")
	s.addUser(userC, "carol")
	s.categories[categoryID] = domain.Category{ID: categoryID, Name: "Concerts"}
	return &world{
		store:      s,
		tx:         &fakeTransactor{store: s},
		events:     &fakeEventRepo{s: s},
		requests:   &fakeRequestRepo{s: s},
		users:      &fakeUserRepo{s: s},
		categories: &fakeCategoryRepo{s: s},
		reactions:  &fakeReactionRepo{s: s},
		stats:      &fakeStats{views: map[string]int64{}},
		email:      &fakeEmailService{},
	}
}

// publishedEvent returns a published event owned by initiatorID.
func publishedEvent(id int64, limit int, moderation bool) domain.Event {
	published := fixedNow.Add(-time.Hour)
	return domain.Event{
		ID:                id,
		Title:             fmt.Sprintf("Event %d", id),
		Annotation:        "annotation long enough to pass",
		Description:       "description long enough to pass",
		CategoryID:        categoryID,
		InitiatorID:       initiatorID,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		EventDate:         eventDate,
		CreatedOn:         fixedNow.Add(-2 * time.Hour),
		PublishedOn:       &published,
		State:             domain.EventStatePublished,
	}
}

func pending(id, eventID, requesterID int64) domain.ParticipationRequest {
	return domain.ParticipationRequest{ID: id, EventID: eventID, RequesterID: requesterID, Created: fixedNow, Status: domain.RequestStatusPending}
}
