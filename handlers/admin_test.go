package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"decorbook/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAdminService struct {
	mock.Mock
}

func (m *mockAdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.DashboardStats)
	return s, args.Error(1)
}

func (m *mockAdminService) RevenueChart(ctx context.Context, rawYear string) ([]models.MonthlyRevenue, error) {
	args := m.Called(ctx, rawYear)
	r, _ := args.Get(0).([]models.MonthlyRevenue)
	return r, args.Error(1)
}

func (m *mockAdminService) PackageStats(ctx context.Context) ([]models.PackageStat, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]models.PackageStat)
	return s, args.Error(1)
}

func setupAdminRouter(t *testing.T, debug bool) (*mockAdminService, *gin.Engine) {
	t.Helper()
	svc := &mockAdminService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	h := NewAdminHandler(svc, zap.NewNop(), debug)
	r := gin.New()
	r.GET("/api/admin/dashboard/stats", h.DashboardStats)
	r.GET("/api/admin/dashboard/revenue-chart", h.RevenueChart)
	r.GET("/api/admin/dashboard/package-stats", h.PackageStats)
	return svc, r
}

func TestDashboardStats(t *testing.T) {
	svc, r := setupAdminRouter(t, false)
	created := time.Date(2030, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.On("Dashboard", mock.Anything).Return(&models.DashboardStats{
		Stats: models.DashboardCounters{
			BookingTotals:  models.BookingTotals{Total: 4, Monthly: 2, Pending: 1, Revenue: 5000},
			UnreadContacts: 3,
		},
		RecentBookings: []models.DashboardEntry{{
			BookingSummary: models.BookingSummary{ID: "b-1", Name: "Priya", Package: models.PackagePopular, Status: models.StatusPending},
			CreatedAt:      created,
		}},
		UpcomingEvents: []models.DashboardEntry{},
	}, nil)

	w := do(r, http.MethodGet, "/api/admin/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 4, stats["totalBookings"])
	assert.EqualValues(t, 2, stats["monthlyBookings"])
	assert.EqualValues(t, 1, stats["pendingBookings"])
	assert.EqualValues(t, 5000, stats["totalRevenue"])
	assert.EqualValues(t, 3, stats["unreadContacts"])

	recent := body["recentBookings"].([]any)
	require.Len(t, recent, 1)
	row := recent[0].(map[string]any)
	assert.Equal(t, "b-1", row["id"])
	assert.Equal(t, "Popular", row["package"])
	assert.Equal(t, "2030-03-02T10:00:00Z", row["createdAt"])
	assert.Empty(t, body["upcomingEvents"])
}

func TestDashboardStats_Failure(t *testing.T) {
	svc, r := setupAdminRouter(t, false)
	svc.On("Dashboard", mock.Anything).Return(nil, models.Infra("load dashboard", errors.New("socket closed")))

	w := do(r, http.MethodGet, "/api/admin/dashboard/stats", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to fetch dashboard stats", body["message"])
	assert.Equal(t, "Internal server error", body["error"])
}

func TestRevenueChart(t *testing.T) {
	svc, r := setupAdminRouter(t, false)
	months := make([]models.MonthlyRevenue, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	months[0] = models.MonthlyRevenue{Month: 1, Revenue: 8000, Bookings: 2}
	svc.On("RevenueChart", mock.Anything, "2030").Return(months, nil)
	svc.On("RevenueChart", mock.Anything, "abc").
		Return(nil, &models.ValidationError{Field: "year", Msg: "year must be a four-digit year"})

	w := do(r, http.MethodGet, "/api/admin/dashboard/revenue-chart?year=2030", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["revenueData"].([]any)
	require.Len(t, data, 12)
	first := data[0].(map[string]any)
	assert.EqualValues(t, 1, first["month"])
	assert.EqualValues(t, 8000, first["revenue"])
	assert.EqualValues(t, 2, first["bookings"])
	assert.EqualValues(t, 0, data[11].(map[string]any)["revenue"])

	w = do(r, http.MethodGet, "/api/admin/dashboard/revenue-chart?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "year", decode(t, w)["details"])
}

func TestPackageStats(t *testing.T) {
	svc, r := setupAdminRouter(t, true)
	svc.On("PackageStats", mock.Anything).Return([]models.PackageStat{
		{Package: models.PackageBasic, Count: 3, Revenue: 7000},
	}, nil).Once()
	svc.On("PackageStats", mock.Anything).Return(nil, models.Infra("aggregate packages", errors.New("socket closed"))).Once()

	w := do(r, http.MethodGet, "/api/admin/dashboard/package-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["packageStats"].([]any)
	require.Len(t, stats, 1)
	assert.Equal(t, "Basic", stats[0].(map[string]any)["package"])
	assert.EqualValues(t, 3, stats[0].(map[string]any)["count"])

	w = do(r, http.MethodGet, "/api/admin/dashboard/package-stats", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["error"], "socket closed")
}
