package contact

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	contactRepo "decorbook/database/repository/contact"
	"decorbook/models"
	"decorbook/utils"

	"go.uber.org/zap"
)

const (
	maxNameLen    = 100
	maxMessageLen = 1000
)

// Notifier receives new inquiries.
type Notifier interface {
	ContactReceived(ctx context.Context, m *models.ContactMessage) error
}

// ContactService is what the HTTP layer depends on.
type ContactService interface {
	Submit(ctx context.Context, sub Submission) (*models.ContactMessage, error)
	List(ctx context.Context, filter models.ContactFilter) (*models.ContactPage, error)
	UpdateStatus(ctx context.Context, id, rawStatus string) (*models.ContactMessage, error)
}

// Submission is the raw contact form.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type Service struct {
	repo          contactRepo.ContactRepository
	notifier      Notifier
	logger        *zap.Logger
	notifyTimeout time.Duration
	now           func() time.Time

	inflight sync.WaitGroup
}

func NewService(repo contactRepo.ContactRepository, notifier Notifier, logger *zap.Logger, notifyTimeout time.Duration) *Service {
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}
	return &Service{
		repo:          repo,
		notifier:      notifier,
		logger:        logger,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

func invalid(field, msg string) error {
	return &models.ValidationError{Field: field, Msg: msg}
}

func validate(sub Submission) (models.ContactDraft, error) {
	d := models.ContactDraft{
		Name:    strings.TrimSpace(sub.Name),
		Email:   utils.NormalizeEmail(sub.Email),
		Phone:   strings.TrimSpace(sub.Phone),
		Message: strings.TrimSpace(sub.Message),
	}
	switch {
	case d.Name == "":
		return d, invalid("name", "Name is required")
	case utf8.RuneCountInString(d.Name) > maxNameLen:
		return d, invalid("name", "Name must be less than 100 characters")
	case d.Email == "":
		return d, invalid("email", "Email is required")
	case !utils.ValidEmail(d.Email):
		return d, invalid("email", "Please provide a valid email")
	case d.Phone != "" && !utils.ValidPhone(d.Phone):
		return d, invalid("phone", "Please provide a valid phone number")
	case d.Message == "":
		return d, invalid("message", "Message is required")
	case utf8.RuneCountInString(d.Message) > maxMessageLen:
		return d, invalid("message", "Message must be less than 1000 characters")
	}
	return d, nil
}

// Submit stores the inquiry and alerts the admin in the background.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.ContactMessage, error) {
	draft, err := validate(sub)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.Create(ctx, draft, s.now())
	if err != nil {
		s.logger.Error("failed to save contact message", zap.Error(err))
		return nil, models.Infra("save contact message", err)
	}
	s.logger.Info("contact message received", zap.String("contact_id", m.ID))
	s.notify(ctx, m)
	return m, nil
}

func (s *Service) notify(ctx context.Context, m *models.ContactMessage) {
	if s.notifier == nil {
		return
	}
	snapshot := *m
	ctx = context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("contact notifier panic", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
		if err := s.notifier.ContactReceived(ctx, &snapshot); err != nil {
			s.logger.Warn("contact notification failed", zap.String("contact_id", snapshot.ID), zap.Error(err))
		}
	}()
}

func (s *Service) List(ctx context.Context, filter models.ContactFilter) (*models.ContactPage, error) {
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Infra("list contact messages", err)
	}
	return page, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (*models.ContactMessage, error) {
	status, err := models.ParseContactStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return nil, models.Infra("update contact status", err)
	}
	return m, nil
}

// Drain waits for pending notifications or until ctx ends.
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
		return fmt.Errorf("contact notifications still pending: %w", ctx.Err())
	}
}

var _ ContactService = (*Service)(nil)
