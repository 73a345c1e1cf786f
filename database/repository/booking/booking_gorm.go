package bookingRepo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"decorbook/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// bookingRecord is the SQL row. ActiveDay is NULL once the booking is
// cancelled or completed; the unique index ignores NULLs so only active
// bookings compete for a day.
type bookingRecord struct {
	ID             string         `gorm:"primaryKey;size:36"`
	Name           string         `gorm:"size:100;not null"`
	Email          string         `gorm:"size:254;not null;index:ix_bookings_email"`
	Phone          string         `gorm:"size:17;not null"`
	EventDate      time.Time      `gorm:"not null"`
	EventDay       string         `gorm:"size:10;not null;index:ix_bookings_day_status,priority:1"`
	Status         string         `gorm:"size:16;not null;index:ix_bookings_day_status,priority:2"`
	ActiveDay      *string        `gorm:"size:10;uniqueIndex:ux_bookings_active_day"`
	Package        string         `gorm:"size:32;not null"`
	PackageDetails datatypes.JSON `gorm:"not null"`
	TotalPrice     float64        `gorm:"not null"`
	Message        string         `gorm:"size:500"`
	CreatedAt      time.Time      `gorm:"index:ix_bookings_created"`
	UpdatedAt      time.Time
}

func (bookingRecord) TableName() string { return "bookings" }

func (rec *bookingRecord) toModel() (*models.Booking, error) {
	var details map[string]any
	if len(rec.PackageDetails) > 0 {
		if err := json.Unmarshal(rec.PackageDetails, &details); err != nil {
			return nil, models.Infra("decode package details", err)
		}
	}
	return &models.Booking{
		ID:             rec.ID,
		Name:           rec.Name,
		Email:          rec.Email,
		Phone:          rec.Phone,
		EventDate:      rec.EventDate,
		EventDay:       rec.EventDay,
		Package:        models.PackageKind(rec.Package),
		PackageDetails: details,
		TotalPrice:     rec.TotalPrice,
		Message:        rec.Message,
		Status:         models.BookingStatus(rec.Status),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

// GormBookingRepo implements BookingRepository on any GORM dialect. Open the
// *gorm.DB with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormBookingRepo struct {
	db *gorm.DB
}

func NewGormBookingRepo(db *gorm.DB) *GormBookingRepo {
	return &GormBookingRepo{db: db}
}

// Migrate creates or updates the bookings table and its indexes.
func (r *GormBookingRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&bookingRecord{}); err != nil {
		return models.Infra("migrate bookings", err)
	}
	return nil
}

func (r *GormBookingRepo) IsDayHeld(ctx context.Context, day string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&bookingRecord{}).
		Where("event_day = ? AND status IN ?", day, []string{string(models.StatusPending), string(models.StatusConfirmed)}).
		Count(&n).Error
	if err != nil {
		return false, models.Infra("check event day", err)
	}
	return n > 0, nil
}

func (r *GormBookingRepo) ReserveIfFree(ctx context.Context, draft models.BookingDraft, now time.Time) (*models.Booking, error) {
	b := newBooking(draft, now)
	details, err := json.Marshal(b.PackageDetails)
	if err != nil {
		return nil, &models.ValidationError{Field: "packageDetails", Msg: "packageDetails is not serializable", Err: err}
	}
	day := b.EventDay
	rec := bookingRecord{
		ID:             b.ID,
		Name:           b.Name,
		Email:          b.Email,
		Phone:          b.Phone,
		EventDate:      b.EventDate.UTC(),
		EventDay:       day,
		Status:         string(b.Status),
		ActiveDay:      &day,
		Package:        string(b.Package),
		PackageDetails: datatypes.JSON(details),
		TotalPrice:     b.TotalPrice,
		Message:        b.Message,
		CreatedAt:      b.CreatedAt.UTC(),
		UpdatedAt:      b.UpdatedAt.UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, models.ErrDayHeld(day)
		}
		return nil, models.Infra("insert booking", err)
	}
	return &b, nil
}

func (r *GormBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var rec bookingRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "booking", ID: id, Err: err}
		}
		return nil, models.Infra("find booking", err)
	}
	return rec.toModel()
}

func (r *GormBookingRepo) CompareAndSetStatus(ctx context.Context, id string, from, to models.BookingStatus, now time.Time) (*models.Booking, error) {
	updates := map[string]any{"status": string(to), "updated_at": now.UTC()}
	if !to.IsActive() {
		updates["active_day"] = nil
	}

	res := r.db.WithContext(ctx).Model(&bookingRecord{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return nil, models.Infra("update booking status", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, models.ErrStaleStatus
	}
	return r.GetByID(ctx, id)
}

func (r *GormBookingRepo) List(ctx context.Context, filter models.BookingFilter) (*models.BookingPage, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			q = q.Where("status = ?", string(*filter.Status))
		}
		if filter.From != nil {
			q = q.Where("event_date >= ?", filter.From.UTC())
		}
		if filter.To != nil {
			q = q.Where("event_date <= ?", filter.To.UTC())
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&bookingRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, models.Infra("count bookings", err)
	}

	var recs []bookingRecord
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, models.Infra("list bookings", err)
	}

	items := make([]models.Booking, 0, len(recs))
	for i := range recs {
		b, err := recs[i].toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	return &models.BookingPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *GormBookingRepo) Totals(ctx context.Context, monthStart, yearStart time.Time) (*models.BookingTotals, error) {
	db := r.db.WithContext(ctx)
	out := &models.BookingTotals{}

	if err := db.Model(&bookingRecord{}).Count(&out.Total).Error; err != nil {
		return nil, models.Infra("count bookings", err)
	}
	if err := db.Model(&bookingRecord{}).Where("created_at >= ?", monthStart.UTC()).Count(&out.Monthly).Error; err != nil {
		return nil, models.Infra("count monthly bookings", err)
	}
	if err := db.Model(&bookingRecord{}).Where("status = ?", string(models.StatusPending)).Count(&out.Pending).Error; err != nil {
		return nil, models.Infra("count pending bookings", err)
	}
	err := db.Model(&bookingRecord{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status IN ? AND created_at >= ?", statusStrings(models.RevenueStatuses), yearStart.UTC()).
		Scan(&out.Revenue).Error
	if err != nil {
		return nil, models.Infra("sum revenue", err)
	}
	return out, nil
}

// RevenueByMonth folds rows into months in Go so the bucket boundaries follow
// loc on every dialect.
func (r *GormBookingRepo) RevenueByMonth(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.MonthlyRevenue, error) {
	var rows []struct {
		CreatedAt  time.Time
		TotalPrice float64
	}
	err := r.db.WithContext(ctx).Model(&bookingRecord{}).
		Select("created_at, total_price").
		Where("status IN ? AND created_at >= ? AND created_at < ?", statusStrings(models.RevenueStatuses), from.UTC(), to.UTC()).
		Scan(&rows).Error
	if err != nil {
		return nil, models.Infra("aggregate revenue", err)
	}

	buckets := map[int]*models.MonthlyRevenue{}
	for _, row := range rows {
		foldMonth(buckets, row.CreatedAt, row.TotalPrice, loc)
	}
	return sortedMonths(buckets), nil
}

func (r *GormBookingRepo) PackageStats(ctx context.Context) ([]models.PackageStat, error) {
	var rows []struct {
		Package string
		Count   int64
		Revenue float64
	}
	err := r.db.WithContext(ctx).Model(&bookingRecord{}).
		Select("package, COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS revenue").
		Group("package").
		Scan(&rows).Error
	if err != nil {
		return nil, models.Infra("aggregate packages", err)
	}

	out := make([]models.PackageStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.PackageStat{Package: models.PackageKind(row.Package), Count: row.Count, Revenue: row.Revenue})
	}
	sortPackageStats(out)
	return out, nil
}

func (r *GormBookingRepo) Upcoming(ctx context.Context, from time.Time, limit int) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("status IN ? AND event_date >= ?", []string{string(models.StatusPending), string(models.StatusConfirmed)}, from.UTC()).
		Order("event_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []bookingRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, models.Infra("list upcoming bookings", err)
	}

	out := make([]models.Booking, 0, len(recs))
	for i := range recs {
		b, err := recs[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *GormBookingRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// isDuplicateKey recognises unique violations whether or not the dialect
// translated them.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
