package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"decorbook/models"
	"decorbook/services/contact"
	"decorbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockContactService struct {
	mock.Mock
}

func (m *mockContactService) Submit(ctx context.Context, sub contact.Submission) (*models.ContactMessage, error) {
	args := m.Called(ctx, sub)
	c, _ := args.Get(0).(*models.ContactMessage)
	return c, args.Error(1)
}

func (m *mockContactService) List(ctx context.Context, filter models.ContactFilter) (*models.ContactPage, error) {
	args := m.Called(ctx, filter)
	p, _ := args.Get(0).(*models.ContactPage)
	return p, args.Error(1)
}

func (m *mockContactService) UpdateStatus(ctx context.Context, id, rawStatus string) (*models.ContactMessage, error) {
	args := m.Called(ctx, id, rawStatus)
	c, _ := args.Get(0).(*models.ContactMessage)
	return c, args.Error(1)
}

func setupContactRouter(t *testing.T) (*mockContactService, *gin.Engine) {
	t.Helper()
	svc := &mockContactService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	h := NewContactHandler(svc, zap.NewNop(), false)
	r := gin.New()
	r.POST("/api/contact", h.SubmitContact)
	r.GET("/api/contacts", h.ListContacts)
	r.PATCH("/api/contacts/:id/status", h.UpdateContactStatus)
	return svc, r
}

func TestSubmitContact(t *testing.T) {
	svc, r := setupContactRouter(t)
	svc.On("Submit", mock.Anything, contact.Submission{Name: "Ravi", Email: "ravi@example.com", Message: "hi"}).
		Return(&models.ContactMessage{ID: "c-1"}, nil)
	svc.On("Submit", mock.Anything, contact.Submission{Name: "Ravi"}).
		Return(nil, &models.ValidationError{Field: "email", Msg: "Email is required"})

	w := do(r, http.MethodPost, "/api/contact", map[string]string{"name": "Ravi", "email": "ravi@example.com", "message": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Message sent successfully", body["message"])
	assert.Equal(t, "c-1", body["contactId"])

	w = do(r, http.MethodPost, "/api/contact", map[string]string{"name": "Ravi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required", decode(t, w)["details"])
}

func TestListContacts(t *testing.T) {
	svc, r := setupContactRouter(t)
	svc.On("List", mock.Anything, mock.MatchedBy(func(f models.ContactFilter) bool {
		return f.Status != nil && *f.Status == models.ContactNew && f.Page == 1 && f.Limit == 10
	})).Return(&models.ContactPage{Items: []models.ContactMessage{{ID: "c-1"}}, Total: 1, Page: 1, Limit: 10}, nil)

	w := do(r, http.MethodGet, "/api/contacts?status=new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["contacts"], 1)
	assert.EqualValues(t, 1, body["totalPages"])

	w = do(r, http.MethodGet, "/api/contacts?status=spam", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateContactStatus(t *testing.T) {
	svc, r := setupContactRouter(t)
	svc.On("UpdateStatus", mock.Anything, "c-1", "read").
		Return(&models.ContactMessage{ID: "c-1", Status: models.ContactRead}, nil)
	svc.On("UpdateStatus", mock.Anything, "c-2", "read").
		Return(nil, &models.NotFoundError{Resource: "contact", ID: "c-2"})
	svc.On("UpdateStatus", mock.Anything, "c-3", "read").
		Return(nil, errors.New("socket closed"))

	w := do(r, http.MethodPatch, "/api/contacts/c-1/status", map[string]string{"status": "read"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "read", decode(t, w)["contact"].(map[string]any)["status"])

	w = do(r, http.MethodPatch, "/api/contacts/c-2/status", map[string]string{"status": "read"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Contact not found", decode(t, w)["message"])

	w = do(r, http.MethodPatch, "/api/contacts/c-3/status", map[string]string{"status": "read"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	var down bool
	monitor := utils.NewHealthMonitor(map[string]utils.Pinger{
		"store": utils.PingFunc(func(context.Context) error {
			if down {
				return errors.New("unreachable")
			}
			return nil
		}),
	})
	h := &HealthHandler{Monitor: monitor}
	r := gin.New()
	r.GET("/health", h.Health)

	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	down = true
	w = do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, false, body["checks"].(map[string]any)["store"])
}
