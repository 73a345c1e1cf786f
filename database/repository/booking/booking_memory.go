package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"decorbook/models"

	"github.com/google/uuid"
)

// MemoryBookingRepo keeps bookings in process memory. A single mutex makes
// the held-day check and the insert one critical section.
type MemoryBookingRepo struct {
	mu         sync.RWMutex
	bookings   map[string]models.Booking
	activeDays map[string]string // event day -> booking id
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		bookings:   make(map[string]models.Booking),
		activeDays: make(map[string]string),
	}
}

func (r *MemoryBookingRepo) IsDayHeld(ctx context.Context, day string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, models.Infra("check event day", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, held := r.activeDays[day]
	return held, nil
}

func (r *MemoryBookingRepo) ReserveIfFree(ctx context.Context, draft models.BookingDraft, now time.Time) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("reserve event day", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, held := r.activeDays[draft.EventDay]; held {
		return nil, models.ErrDayHeld(draft.EventDay)
	}

	b := newBooking(draft, now)
	r.bookings[b.ID] = b
	r.activeDays[b.EventDay] = b.ID
	return &b, nil
}

func (r *MemoryBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("get booking", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "booking", ID: id}
	}
	return &b, nil
}

func (r *MemoryBookingRepo) CompareAndSetStatus(ctx context.Context, id string, from, to models.BookingStatus, now time.Time) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("update booking status", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "booking", ID: id}
	}
	if b.Status != from {
		return nil, models.ErrStaleStatus
	}
	b.Status = to
	b.UpdatedAt = now
	r.bookings[id] = b
	if !b.HoldsDay() && r.activeDays[b.EventDay] == id {
		delete(r.activeDays, b.EventDay)
	}
	return &b, nil
}

func (r *MemoryBookingRepo) List(ctx context.Context, filter models.BookingFilter) (*models.BookingPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("list bookings", err)
	}
	page, limit := normalizePage(filter.Page, filter.Limit)

	r.mu.RLock()
	matched := make([]models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.From != nil && b.EventDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && b.EventDate.After(*filter.To) {
			continue
		}
		matched = append(matched, b)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	out := &models.BookingPage{Total: int64(len(matched)), Page: page, Limit: limit, Items: []models.Booking{}}
	start := (page - 1) * limit
	if start < len(matched) {
		end := start + limit
		if end > len(matched) {
			end = len(matched)
		}
		out.Items = matched[start:end]
	}
	return out, nil
}

func (r *MemoryBookingRepo) Totals(ctx context.Context, monthStart, yearStart time.Time) (*models.BookingTotals, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("count bookings", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &models.BookingTotals{Total: int64(len(r.bookings))}
	for _, b := range r.bookings {
		if !b.CreatedAt.Before(monthStart) {
			out.Monthly++
		}
		if b.Status == models.StatusPending {
			out.Pending++
		}
		if b.Status.EarnsRevenue() && !b.CreatedAt.Before(yearStart) {
			out.Revenue += b.TotalPrice
		}
	}
	return out, nil
}

func (r *MemoryBookingRepo) RevenueByMonth(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.MonthlyRevenue, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("aggregate revenue", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	buckets := map[int]*models.MonthlyRevenue{}
	for _, b := range r.bookings {
		if !b.Status.EarnsRevenue() || b.CreatedAt.Before(from) || !b.CreatedAt.Before(to) {
			continue
		}
		foldMonth(buckets, b.CreatedAt, b.TotalPrice, loc)
	}
	return sortedMonths(buckets), nil
}

func (r *MemoryBookingRepo) PackageStats(ctx context.Context) ([]models.PackageStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("aggregate packages", err)
	}
	r.mu.RLock()
	byPackage := map[models.PackageKind]*models.PackageStat{}
	for _, b := range r.bookings {
		st, ok := byPackage[b.Package]
		if !ok {
			st = &models.PackageStat{Package: b.Package}
			byPackage[b.Package] = st
		}
		st.Count++
		st.Revenue += b.TotalPrice
	}
	r.mu.RUnlock()

	out := make([]models.PackageStat, 0, len(byPackage))
	for _, st := range byPackage {
		out = append(out, *st)
	}
	sortPackageStats(out)
	return out, nil
}

func (r *MemoryBookingRepo) Upcoming(ctx context.Context, from time.Time, limit int) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("list upcoming bookings", err)
	}
	r.mu.RLock()
	out := make([]models.Booking, 0)
	for _, b := range r.bookings {
		if b.HoldsDay() && !b.EventDate.Before(from) {
			out = append(out, b)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryBookingRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

// newBooking builds the stored form of a fresh reservation.
func newBooking(draft models.BookingDraft, now time.Time) models.Booking {
	return models.Booking{
		ID:             uuid.New().String(),
		Name:           draft.Name,
		Email:          draft.Email,
		Phone:          draft.Phone,
		EventDate:      draft.EventDate,
		EventDay:       draft.EventDay,
		Package:        draft.Package,
		PackageDetails: draft.PackageDetails,
		TotalPrice:     draft.TotalPrice,
		Message:        draft.Message,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
