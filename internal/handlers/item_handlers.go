package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/services"
)

type ItemHandler struct {
	catalog *services.ItemCatalogService
}

func NewItemHandler(catalog *services.ItemCatalogService) *ItemHandler {
	return &ItemHandler{catalog: catalog}
}

// CreateItem creates a new inventory item
// POST /api/v1/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.catalog.CreateItem(c.Request.Context(), req, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ItemResponse{Success: true, Data: item})
}

// GetItem retrieves an item by ID
// GET /api/v1/items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ItemResponse{Success: true, Data: item})
}

// ListItems retrieves items with optional filtering
// GET /api/v1/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	page, limit := parsePagination(c)

	var status *models.ItemStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.ItemStatus(statusStr)
		status = &s
	}
	search := c.Query("search")

	items, total, err := h.catalog.ListItems(c.Request.Context(), status, search, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ItemListResponse{
		Success: true,
		Data:    items,
		Meta:    paginationMeta(total, page, limit),
	})
}

// UpdateItem updates item master data
// PUT /api/v1/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.catalog.UpdateItem(c.Request.Context(), id, req, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ItemResponse{Success: true, Data: item})
}

// DeleteItem soft deletes an item
// DELETE /api/v1/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Item deleted successfully",
	})
}

// GetItemHistory returns the change history of an item
// GET /api/v1/items/:id/history
func (h *ItemHandler) GetItemHistory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.catalog.GetItemHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ItemHistoryListResponse{Success: true, Data: history})
}
