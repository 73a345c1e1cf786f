package contactRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"decorbook/models"
)

type MemoryContactRepo struct {
	mu       sync.RWMutex
	messages map[string]models.ContactMessage
}

func NewMemoryContactRepo() *MemoryContactRepo {
	return &MemoryContactRepo{messages: make(map[string]models.ContactMessage)}
}

func (r *MemoryContactRepo) Create(ctx context.Context, draft models.ContactDraft, now time.Time) (*models.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("insert contact", err)
	}
	m := newContact(draft, now)
	r.mu.Lock()
	r.messages[m.ID] = m
	r.mu.Unlock()
	return &m, nil
}

func (r *MemoryContactRepo) UpdateStatus(ctx context.Context, id string, status models.ContactStatus, now time.Time) (*models.ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("update contact status", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "contact", ID: id}
	}
	m.Status = status
	m.UpdatedAt = now
	r.messages[id] = m
	return &m, nil
}

func (r *MemoryContactRepo) List(ctx context.Context, filter models.ContactFilter) (*models.ContactPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.Infra("list contacts", err)
	}
	page, limit := normalizePage(filter.Page, filter.Limit)

	r.mu.RLock()
	matched := make([]models.ContactMessage, 0, len(r.messages))
	for _, m := range r.messages {
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		matched = append(matched, m)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	out := &models.ContactPage{Total: int64(len(matched)), Page: page, Limit: limit, Items: []models.ContactMessage{}}
	if start := (page - 1) * limit; start < len(matched) {
		end := min(start+limit, len(matched))
		out.Items = matched[start:end]
	}
	return out, nil
}

func (r *MemoryContactRepo) CountByStatus(ctx context.Context, status models.ContactStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, models.Infra("count contacts", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.messages {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}
