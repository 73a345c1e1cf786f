package admin

import (
	"context"
	"strconv"
	"strings"
	"time"

	bookingRepo "decorbook/database/repository/booking"
	contactRepo "decorbook/database/repository/contact"
	"decorbook/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentLimit   = 5
	upcomingLimit = 5
)

// AdminService backs the read-only dashboard.
type AdminService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	RevenueChart(ctx context.Context, rawYear string) ([]models.MonthlyRevenue, error)
	PackageStats(ctx context.Context) ([]models.PackageStat, error)
}

type Service struct {
	bookings bookingRepo.BookingRepository
	contacts contactRepo.ContactRepository
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(bookings bookingRepo.BookingRepository, contacts contactRepo.ContactRepository, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{bookings: bookings, contacts: contacts, loc: loc, logger: logger, now: time.Now}
}

// Dashboard gathers the counters and the two short booking lists. Month and
// year boundaries are taken in the reference timezone.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	monthStart := models.MonthStart(now, s.loc)
	yearStart := models.YearStart(now.In(s.loc).Year(), s.loc)

	var (
		totals   *models.BookingTotals
		unread   int64
		recent   *models.BookingPage
		upcoming []models.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.bookings.Totals(gctx, monthStart, yearStart)
		return err
	})
	g.Go(func() (err error) {
		unread, err = s.contacts.CountByStatus(gctx, models.ContactNew)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.bookings.List(gctx, models.BookingFilter{Page: 1, Limit: recentLimit})
		return err
	})
	g.Go(func() (err error) {
		upcoming, err = s.bookings.Upcoming(gctx, now, upcomingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.Infra("load dashboard", err)
	}

	return &models.DashboardStats{
		Stats:          models.DashboardCounters{BookingTotals: *totals, UnreadContacts: unread},
		RecentBookings: entries(recent.Items),
		UpcomingEvents: entries(upcoming),
	}, nil
}

// RevenueChart returns twelve points for the year, months without revenue
// included as zero. An empty rawYear means the current year.
func (s *Service) RevenueChart(ctx context.Context, rawYear string) ([]models.MonthlyRevenue, error) {
	year := s.now().In(s.loc).Year()
	if raw := strings.TrimSpace(rawYear); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			return nil, &models.ValidationError{Field: "year", Msg: "year must be a four-digit year"}
		}
		year = y
	}

	got, err := s.bookings.RevenueByMonth(ctx, models.YearStart(year, s.loc), models.YearStart(year+1, s.loc), s.loc)
	if err != nil {
		return nil, models.Infra("aggregate revenue", err)
	}

	months := make([]models.MonthlyRevenue, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for _, m := range got {
		if m.Month >= 1 && m.Month <= 12 {
			months[m.Month-1] = m
		}
	}
	return months, nil
}

func (s *Service) PackageStats(ctx context.Context) ([]models.PackageStat, error) {
	stats, err := s.bookings.PackageStats(ctx)
	if err != nil {
		return nil, models.Infra("aggregate packages", err)
	}
	if stats == nil {
		stats = []models.PackageStat{}
	}
	return stats, nil
}

func entries(bookings []models.Booking) []models.DashboardEntry {
	out := make([]models.DashboardEntry, 0, len(bookings))
	for i := range bookings {
		out = append(out, models.DashboardEntry{
			BookingSummary: bookings[i].Summary(),
			CreatedAt:      bookings[i].CreatedAt,
		})
	}
	return out
}
