package handlers

import (
	"net/http"

	"decorbook/models"
	"decorbook/services/contact"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContactHandler struct {
	Service contact.ContactService
	Logger  *zap.Logger
	Debug   bool
}

func NewContactHandler(svc contact.ContactService, logger *zap.Logger, debug bool) *ContactHandler {
	return &ContactHandler{Service: svc, Logger: logger, Debug: debug}
}

// SubmitContact handles POST /api/contact.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		bindError(c, logger, err, h.Debug)
		return
	}

	m, err := h.Service.Submit(c.Request.Context(), sub)
	if err != nil {
		respondSubmitError(c, logger, err, "Failed to send message", h.Debug)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Message sent successfully",
		"contactId": m.ID,
	})
}

// ListContacts handles GET /api/contacts.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var filter models.ContactFilter
	var err error
	if filter.Page, filter.Limit, err = pagination(c); err != nil {
		respondError(c, logger, err, "Failed to fetch contacts", h.Debug)
		return
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseContactStatus(raw)
		if err != nil {
			respondError(c, logger, err, "Failed to fetch contacts", h.Debug)
			return
		}
		filter.Status = &status
	}

	page, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, logger, err, "Failed to fetch contacts", h.Debug)
		return
	}
	items := page.Items
	if items == nil {
		items = []models.ContactMessage{}
	}
	c.JSON(http.StatusOK, gin.H{
		"contacts":    items,
		"totalPages":  page.TotalPages(),
		"currentPage": page.Page,
		"total":       page.Total,
	})
}

// UpdateContactStatus handles PATCH /api/contacts/:id/status.
func (h *ContactHandler) UpdateContactStatus(c *gin.Context) {
	logger := getLogger(c, h.Logger)
	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, logger, err, h.Debug)
		return
	}

	m, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		respondError(c, logger, err, "Failed to update contact status", h.Debug)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Contact status updated successfully",
		"contact": m,
	})
}
