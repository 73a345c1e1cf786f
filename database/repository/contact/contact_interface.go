package contactRepo

import (
	"context"
	"time"

	"decorbook/models"

	"github.com/google/uuid"
)

// ContactRepository stores contact form inquiries.
type ContactRepository interface {
	Create(ctx context.Context, draft models.ContactDraft, now time.Time) (*models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus, now time.Time) (*models.ContactMessage, error)
	List(ctx context.Context, filter models.ContactFilter) (*models.ContactPage, error)
	CountByStatus(ctx context.Context, status models.ContactStatus) (int64, error)
}

func newContact(draft models.ContactDraft, now time.Time) models.ContactMessage {
	return models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Message:   draft.Message,
		Status:    models.ContactNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
