package bookingRepo

import (
	"context"
	"sort"
	"time"

	"decorbook/models"
)

// BookingRepository is the availability store. Implementations must make
// ReserveIfFree atomic: of two concurrent reservations for the same event day
// at most one succeeds, the other gets a *models.ConflictError.
type BookingRepository interface {
	// IsDayHeld reports whether an active booking owns day ("YYYY-MM-DD").
	IsDayHeld(ctx context.Context, day string) (bool, error)
	// ReserveIfFree persists a pending booking for draft.EventDay unless the
	// day is already held.
	ReserveIfFree(ctx context.Context, draft models.BookingDraft, now time.Time) (*models.Booking, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// CompareAndSetStatus moves a booking from one status to another. It
	// returns models.ErrStaleStatus when the stored status is no longer from.
	CompareAndSetStatus(ctx context.Context, id string, from, to models.BookingStatus, now time.Time) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) (*models.BookingPage, error)

	// Totals counts bookings for the dashboard. monthStart bounds the monthly
	// count and yearStart the revenue sum, both against CreatedAt.
	Totals(ctx context.Context, monthStart, yearStart time.Time) (*models.BookingTotals, error)
	// RevenueByMonth sums revenue-earning bookings created in [from, to),
	// bucketed by calendar month in loc. Months without bookings are omitted.
	RevenueByMonth(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.MonthlyRevenue, error)
	// PackageStats groups every booking by package, most booked first.
	PackageStats(ctx context.Context) ([]models.PackageStat, error)
	// Upcoming returns up to limit active bookings whose event is at or after
	// from, soonest first.
	Upcoming(ctx context.Context, from time.Time, limit int) ([]models.Booking, error)

	Ping(ctx context.Context) error
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// normalizePage clamps page and limit to sane values.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// sortPackageStats orders by count descending, then by package name so ties
// are stable across backends.
func sortPackageStats(stats []models.PackageStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Package < stats[j].Package
	})
}

// foldMonth adds one booking to the month bucket of createdAt in loc.
func foldMonth(buckets map[int]*models.MonthlyRevenue, createdAt time.Time, price float64, loc *time.Location) {
	m := int(createdAt.In(loc).Month())
	b, ok := buckets[m]
	if !ok {
		b = &models.MonthlyRevenue{Month: m}
		buckets[m] = b
	}
	b.Revenue += price
	b.Bookings++
}

func sortedMonths(buckets map[int]*models.MonthlyRevenue) []models.MonthlyRevenue {
	out := make([]models.MonthlyRevenue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
