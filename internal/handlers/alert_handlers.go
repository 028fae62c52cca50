package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

type AlertHandler struct {
	repo repository.LedgerRepositoryInterface
}

func NewAlertHandler(repo repository.LedgerRepositoryInterface) *AlertHandler {
	return &AlertHandler{repo: repo}
}

// ListAlerts retrieves stock alerts with optional filtering
// GET /api/v1/alerts
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	page, limit := parsePagination(c)

	var isResolved *bool
	if resolvedStr := c.Query("resolved"); resolvedStr != "" {
		resolved, err := strconv.ParseBool(resolvedStr)
		if err == nil {
			isResolved = &resolved
		}
	}

	var alertType *models.AlertType
	if typeStr := c.Query("type"); typeStr != "" {
		t := models.AlertType(typeStr)
		alertType = &t
	}

	alerts, total, err := h.repo.ListAlerts(c.Request.Context(), isResolved, alertType, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertListResponse{
		Success: true,
		Data:    alerts,
		Meta:    paginationMeta(total, page, limit),
	})
}

// GetAlert retrieves a single alert
// GET /api/v1/alerts/:id
func (h *AlertHandler) GetAlert(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	alert, err := h.repo.GetAlertByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertResponse{Success: true, Data: alert})
}

// AcknowledgeAlert marks an alert as seen
// POST /api/v1/alerts/:id/acknowledge
func (h *AlertHandler) AcknowledgeAlert(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.AcknowledgeAlert(c.Request.Context(), id, currentActor(c)); err != nil {
		respondError(c, err)
		return
	}

	alert, err := h.repo.GetAlertByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertResponse{Success: true, Data: alert})
}

// ResolveAlert closes an alert
// POST /api/v1/alerts/:id/resolve
func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.ResolveAlert(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	alert, err := h.repo.GetAlertByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertResponse{Success: true, Data: alert})
}
