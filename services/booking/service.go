package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingRepo "decorbook/database/repository/booking"
	"decorbook/models"

	"go.uber.org/zap"
)

// maxStatusAttempts bounds the read/compare-and-set loop in UpdateStatus.
const maxStatusAttempts = 3

// Notifier is the part of the notification gateway bookings need.
type Notifier interface {
	BookingCreated(ctx context.Context, b *models.Booking) error
	BookingStatusChanged(ctx context.Context, b *models.Booking) error
}

// BookingService is what the HTTP layer and the scheduler depend on.
type BookingService interface {
	Submit(ctx context.Context, sub Submission) (*models.Booking, error)
	CheckAvailability(ctx context.Context, rawDate string) (*Availability, error)
	UpdateStatus(ctx context.Context, id, rawStatus string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) (*models.BookingPage, error)
}

// Availability answers a date check.
type Availability struct {
	Available bool   `json:"available"`
	Day       string `json:"day"`
	Message   string `json:"message"`
}

// Service is the booking lifecycle manager.
type Service struct {
	repo          bookingRepo.BookingRepository
	validator     *Validator
	notifier      Notifier
	locker        DayLocker
	logger        *zap.Logger
	loc           *time.Location
	notifyTimeout time.Duration
	now           func() time.Time

	inflight sync.WaitGroup
}

type Option func(*Service)

// WithDayLocker puts a per-day critical section around reservations.
func WithDayLocker(l DayLocker) Option {
	return func(s *Service) { s.locker = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifyTimeout bounds each notification attempt.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

func NewService(repo bookingRepo.BookingRepository, notifier Notifier, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		repo:          repo,
		validator:     NewValidator(loc),
		notifier:      notifier,
		logger:        logger,
		loc:           loc,
		notifyTimeout: 10 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates sub, reserves its event day and hands the new booking to
// the notifier in the background. A returned booking is committed whatever
// happens to its notification.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.Booking, error) {
	now := s.now()
	draft, err := s.validator.Validate(sub, now)
	if err != nil {
		return nil, err
	}

	unlock := s.lockDay(ctx, draft.EventDay)
	b, err := s.repo.ReserveIfFree(ctx, draft, now)
	unlock()
	if err != nil {
		if models.IsConflict(err) {
			s.logger.Info("event day already held", zap.String("event_day", draft.EventDay))
			return nil, err
		}
		s.logger.Error("failed to reserve event day", zap.String("event_day", draft.EventDay), zap.Error(err))
		return nil, models.Infra("reserve event day", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("event_day", b.EventDay),
		zap.String("package", string(b.Package)),
	)
	s.dispatch(ctx, "booking_created", b, Notifier.BookingCreated)
	return b, nil
}

// lockDay takes the optional day lock. Lock failures are logged and ignored:
// the store still refuses a second active booking for the day.
func (s *Service) lockDay(ctx context.Context, day string) func() {
	if s.locker == nil {
		return func() {}
	}
	unlock, err := s.locker.Lock(ctx, day)
	if err != nil {
		s.logger.Warn("proceeding without day lock", zap.String("event_day", day), zap.Error(err))
		return func() {}
	}
	return unlock
}

// CheckAvailability uses the same date parsing and day bucket as Submit.
func (s *Service) CheckAvailability(ctx context.Context, rawDate string) (*Availability, error) {
	_, day, err := s.validator.ValidateEventDate(rawDate, s.now())
	if err != nil {
		return nil, err
	}
	held, err := s.repo.IsDayHeld(ctx, day)
	if err != nil {
		s.logger.Error("failed to check event day", zap.String("event_day", day), zap.Error(err))
		return nil, models.Infra("check event day", err)
	}
	if held {
		return &Availability{Available: false, Day: day, Message: "Date is already booked"}, nil
	}
	return &Availability{Available: true, Day: day, Message: "Date is available"}, nil
}

// UpdateStatus moves booking id to rawStatus if the lifecycle allows it.
// Concurrent updates are serialized by compare-and-set on the prior status;
// a loser re-reads and re-checks the transition.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (*models.Booking, error) {
	to, err := models.ParseBookingStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, models.Infra("load booking", err)
		}
		if !current.Status.CanTransitionTo(to) {
			return nil, &models.IllegalTransitionError{From: current.Status, To: to}
		}

		updated, err := s.repo.CompareAndSetStatus(ctx, id, current.Status, to, s.now())
		if errors.Is(err, models.ErrStaleStatus) {
			s.logger.Debug("booking status changed underneath update, retrying",
				zap.String("booking_id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, models.Infra("update booking status", err)
		}

		s.logger.Info("booking status updated",
			zap.String("booking_id", id),
			zap.String("from", string(current.Status)),
			zap.String("status", string(to)),
		)
		if to == models.StatusConfirmed || to == models.StatusCancelled {
			s.dispatch(ctx, "booking_status_changed", updated, Notifier.BookingStatusChanged)
		}
		return updated, nil
	}

	return nil, &models.ConflictError{
		Resource: "booking",
		Msg:      "Booking was modified concurrently. Please retry.",
		Err:      fmt.Errorf("gave up after %d attempts: %w", maxStatusAttempts, models.ErrStaleStatus),
	}
}

func (s *Service) List(ctx context.Context, filter models.BookingFilter) (*models.BookingPage, error) {
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Infra("list bookings", err)
	}
	return page, nil
}

// CompletePastEvents marks confirmed bookings whose event day has ended as
// completed and returns how many were moved.
func (s *Service) CompletePastEvents(ctx context.Context) (int, error) {
	todayStart, _, err := models.DayBounds(models.DayOf(s.now(), s.loc), s.loc)
	if err != nil {
		return 0, err
	}
	cutoff := todayStart.Add(-time.Millisecond)
	confirmed := models.StatusConfirmed

	var (
		completed int
		failed    = map[string]bool{}
	)
	for {
		page, err := s.repo.List(ctx, models.BookingFilter{Status: &confirmed, To: &cutoff, Page: 1, Limit: 100})
		if err != nil {
			return completed, models.Infra("list elapsed bookings", err)
		}
		progressed := false
		for _, b := range page.Items {
			if failed[b.ID] {
				continue
			}
			if _, err := s.UpdateStatus(ctx, b.ID, string(models.StatusCompleted)); err != nil {
				s.logger.Warn("failed to complete booking", zap.String("booking_id", b.ID), zap.Error(err))
				failed[b.ID] = true
				continue
			}
			completed++
			progressed = true
		}
		if !progressed || int64(len(page.Items)) >= page.Total {
			return completed, nil
		}
	}
}

// Drain waits for in-flight notifications or until ctx is done.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
