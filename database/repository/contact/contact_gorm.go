package contactRepo

import (
	"context"
	"errors"
	"time"

	"decorbook/models"

	"gorm.io/gorm"
)

type contactRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:254;not null"`
	Phone     string    `gorm:"size:17"`
	Message   string    `gorm:"size:1000;not null"`
	Status    string    `gorm:"size:16;not null;index:ix_contacts_status_created,priority:1"`
	CreatedAt time.Time `gorm:"index:ix_contacts_status_created,priority:2"`
	UpdatedAt time.Time
}

func (contactRecord) TableName() string { return "contacts" }

func (rec contactRecord) toModel() models.ContactMessage {
	return models.ContactMessage{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Message:   rec.Message,
		Status:    models.ContactStatus(rec.Status),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

type GormContactRepo struct {
	db *gorm.DB
}

func NewGormContactRepo(db *gorm.DB) *GormContactRepo {
	return &GormContactRepo{db: db}
}

func (r *GormContactRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&contactRecord{}); err != nil {
		return models.Infra("migrate contacts", err)
	}
	return nil
}

func (r *GormContactRepo) Create(ctx context.Context, draft models.ContactDraft, now time.Time) (*models.ContactMessage, error) {
	m := newContact(draft, now.UTC())
	rec := contactRecord{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, models.Infra("insert contact", err)
	}
	return &m, nil
}

func (r *GormContactRepo) UpdateStatus(ctx context.Context, id string, status models.ContactStatus, now time.Time) (*models.ContactMessage, error) {
	res := r.db.WithContext(ctx).Model(&contactRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": now.UTC()})
	if res.Error != nil {
		return nil, models.Infra("update contact status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &models.NotFoundError{Resource: "contact", ID: id}
	}

	var rec contactRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "contact", ID: id, Err: err}
		}
		return nil, models.Infra("find contact", err)
	}
	m := rec.toModel()
	return &m, nil
}

func (r *GormContactRepo) List(ctx context.Context, filter models.ContactFilter) (*models.ContactPage, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			q = q.Where("status = ?", string(*filter.Status))
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&contactRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, models.Infra("count contacts", err)
	}

	var recs []contactRecord
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, models.Infra("list contacts", err)
	}

	items := make([]models.ContactMessage, 0, len(recs))
	for _, rec := range recs {
		items = append(items, rec.toModel())
	}
	return &models.ContactPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (r *GormContactRepo) CountByStatus(ctx context.Context, status models.ContactStatus) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&contactRecord{}).Where("status = ?", string(status)).Count(&n).Error; err != nil {
		return 0, models.Infra("count contacts", err)
	}
	return n, nil
}
