package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"decorbook/models"
	"decorbook/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the public booking form and the admin booking list.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
	Loc     *time.Location
	// Debug echoes infrastructure error causes to clients.
	Debug bool
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger, loc *time.Location, debug bool) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{Service: svc, Logger: logger, Loc: loc, Debug: debug}
}

// CreateBooking handles POST /api/book.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var sub booking.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		bindError(c, logger, err, h.Debug)
		return
	}

	b, err := h.Service.Submit(c.Request.Context(), sub)
	if err != nil {
		respondSubmitError(c, logger, err, "Failed to create booking", h.Debug)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Booking created successfully",
		"bookingId": b.ID,
		"booking":   b.Summary(),
	})
}

// CheckAvailability handles POST /api/check-availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var input struct {
		EventDate string `json:"eventDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, logger, err, h.Debug)
		return
	}

	avail, err := h.Service.CheckAvailability(c.Request.Context(), input.EventDate)
	if err != nil {
		respondError(c, logger, err, "Failed to check availability", h.Debug)
		return
	}
	c.JSON(http.StatusOK, avail)
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	filter, err := h.bookingFilter(c)
	if err != nil {
		respondError(c, logger, err, "Failed to fetch bookings", h.Debug)
		return
	}

	page, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, logger, err, "Failed to fetch bookings", h.Debug)
		return
	}

	items := page.Items
	if items == nil {
		items = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings":    items,
		"totalPages":  page.TotalPages(),
		"currentPage": page.Page,
		"total":       page.Total,
	})
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	id := c.Param("id")
	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, logger, err, h.Debug)
		return
	}

	b, err := h.Service.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, logger, err, "Failed to update booking status", h.Debug)
		return
	}

	logger.Info("booking status updated", zap.String("booking_id", b.ID), zap.String("status", string(b.Status)))
	c.JSON(http.StatusOK, gin.H{
		"message": "Booking status updated successfully",
		"booking": b,
	})
}

func (h *BookingHandler) bookingFilter(c *gin.Context) (models.BookingFilter, error) {
	var f models.BookingFilter
	var err error
	if f.Page, f.Limit, err = pagination(c); err != nil {
		return f, err
	}

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}
	if raw := c.Query("startDate"); raw != "" {
		from, err := parseQueryDate(raw, h.Loc, false)
		if err != nil {
			return f, &models.ValidationError{Field: "startDate", Msg: "startDate must be a valid date"}
		}
		f.From = &from
	}
	if raw := c.Query("endDate"); raw != "" {
		to, err := parseQueryDate(raw, h.Loc, true)
		if err != nil {
			return f, &models.ValidationError{Field: "endDate", Msg: "endDate must be a valid date"}
		}
		f.To = &to
	}
	return f, nil
}

func pagination(c *gin.Context) (page, limit int, err error) {
	page, limit = 1, 10
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, &models.ValidationError{Field: "page", Msg: "page must be a positive integer"}
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return 0, 0, &models.ValidationError{Field: "limit", Msg: "limit must be a positive integer"}
		}
	}
	return page, limit, nil
}

// parseQueryDate accepts RFC 3339 or a bare day. A bare day used as an upper
// bound covers the whole day.
func parseQueryDate(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	start, end, err := models.DayBounds(raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return end, nil
	}
	return start, nil
}
