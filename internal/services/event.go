package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"explorewithme/internal/domain"
	"explorewithme/internal/metrics"
)

type eventService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	categoryRepo   domain.CategoryRepository
	stats          domain.ViewStats
	notifier       *notifier
	metrics        *metrics.Metrics
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(tx domain.Transactor,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	stats domain.ViewStats,
	emailService domain.EmailService,
	m *metrics.Metrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		tx:             tx,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		categoryRepo:   categoryRepo,
		stats:          stats,
		notifier:       newNotifier(userRepo, emailService, logger),
		metrics:        m,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now().UTC().Truncate(time.Second)
	if err := domain.ValidateEventDate(event.EventDate, now); err != nil {
		return err
	}
	if event.ParticipantLimit < 0 {
		return fmt.Errorf("%w: participantLimit must not be negative", domain.ErrInvalidField)
	}
	if _, err := getUser(ctx, s.userRepo, event.InitiatorID); err != nil {
		return err
	}
	if _, err := getCategory(ctx, s.categoryRepo, event.CategoryID); err != nil {
		return err
	}

	event.State = domain.EventStatePending
	event.CreatedOn = now
	event.PublishedOn = nil
	event.ConfirmedRequests = 0
	event.Rating = 0
	event.Views = 0
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var event *domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := getUser(ctx, s.userRepo, initiatorID); err != nil {
			return err
		}
		var err error
		event, err = lockEvent(ctx, s.eventRepo, eventID)
		if err != nil {
			return err
		}
		if err := ownedBy(event, initiatorID); err != nil {
			return err
		}
		if err := event.ApplyInitiatorUpdate(patch, s.now().UTC()); err != nil {
			return err
		}
		return s.save(ctx, event, patch)
	})
	if err != nil {
		return nil, err
	}
	if patch.StateAction != nil {
		s.metrics.EventTransition(string(*patch.StateAction))
	}
	return event, nil
}

func (s *eventService) UpdateEventByModerator(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var event *domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = lockEvent(ctx, s.eventRepo, eventID)
		if err != nil {
			return err
		}
		if err := event.ApplyModeratorUpdate(patch, s.now().UTC().Truncate(time.Second)); err != nil {
			return err
		}
		return s.save(ctx, event, patch)
	})
	if err != nil {
		return nil, err
	}
	if patch.StateAction != nil {
		s.metrics.EventTransition(string(*patch.StateAction))
		s.notifier.eventModerated(ctx, event)
	}
	return event, nil
}

// save checks a changed category and writes the event.
func (s *eventService) save(ctx context.Context, event *domain.Event, patch domain.EventPatch) error {
	if patch.CategoryID != nil {
		if _, err := getCategory(ctx, s.categoryRepo, *patch.CategoryID); err != nil {
			return err
		}
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (s *eventService) GetInitiatorEvent(ctx context.Context, initiatorID, eventID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := getUser(ctx, s.userRepo, initiatorID); err != nil {
		return nil, err
	}
	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(event, initiatorID); err != nil {
		return nil, err
	}
	s.fillViews(ctx, event)
	return event, nil
}

func (s *eventService) ListInitiatorEvents(ctx context.Context, initiatorID int64, page domain.PaginationParams) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := getUser(ctx, s.userRepo, initiatorID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByInitiator(ctx, initiatorID, page)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	s.fillViews(ctx, events...)
	return events, nil
}

func (s *eventService) SearchEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Text = ""
	filter.Paid = nil
	filter.OnlyAvailable = false
	filter.Sort = ""
	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	s.fillViews(ctx, events...)
	return events, nil
}

func (s *eventService) ListPublishedEvents(ctx context.Context, filter domain.EventFilter, hit domain.Hit) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.RangeStart == nil && filter.RangeEnd == nil {
		now := s.now().UTC()
		filter.RangeStart = &now
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Users = nil
	filter.States = []domain.EventState{domain.EventStatePublished}

	events, err := s.eventRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	s.stats.RecordHit(ctx, hit.URI, hit.IP)
	s.fillViews(ctx, events...)
	if filter.Sort == domain.EventSortViews {
		sort.SliceStable(events, func(i, j int) bool { return events[i].Views > events[j].Views })
	}
	return events, nil
}

func (s *eventService) GetPublishedEvent(ctx context.Context, eventID int64, hit domain.Hit) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := getEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished() {
		return nil, domain.EventNotFound(eventID)
	}
	s.stats.RecordHit(ctx, hit.URI, hit.IP)
	s.fillViews(ctx, event)
	return event, nil
}

// fillViews sets Views from the statistics service with one lookup for the
// whole page. A failed lookup leaves the counts at zero.
func (s *eventService) fillViews(ctx context.Context, events ...*domain.Event) {
	if len(events) == 0 {
		return
	}
	uris := make([]string, len(events))
	for i, e := range events {
		uris[i] = EventURI(e.ID)
	}
	views, err := s.stats.CountViews(ctx, uris)
	if err != nil {
		s.logger.WarnContext(ctx, "view counts unavailable", "events", len(events), "err", err)
		return
	}
	for i, e := range events {
		e.Views = views[uris[i]]
	}
}

// EventURI is the public path of an event, as reported to the statistics service.
func EventURI(id int64) string {
	return "/events/" + strconv.FormatInt(id, 10)
}
