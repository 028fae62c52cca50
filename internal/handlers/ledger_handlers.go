package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/services"
)

type LedgerHandler struct {
	ledger *services.StockLedgerService
}

func NewLedgerHandler(ledger *services.StockLedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// RecordTransaction posts a stock movement
// POST /api/v1/transactions
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var req models.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.ledger.RecordTransaction(c.Request.Context(), req, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.TransactionResponse{Success: true, Data: result})
}

// GetTransaction retrieves a single ledger entry
// GET /api/v1/transactions/:id
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.ledger.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: txn})
}

// ListTransactions retrieves ledger entries with optional filtering
// GET /api/v1/transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	page, limit := parsePagination(c)

	var itemID *uuid.UUID
	if itemStr := c.Query("itemId"); itemStr != "" {
		id, err := uuid.Parse(itemStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid itemId"},
			})
			return
		}
		itemID = &id
	}

	var txnType *models.TransactionType
	if typeStr := c.Query("type"); typeStr != "" {
		t := models.TransactionType(typeStr)
		txnType = &t
	}

	txns, total, err := h.ledger.ListTransactions(c.Request.Context(), itemID, txnType, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionListResponse{
		Success: true,
		Data:    txns,
		Meta:    paginationMeta(total, page, limit),
	})
}

// ListItemTransactions retrieves the ledger entries for one item
// GET /api/v1/items/:id/transactions
func (h *LedgerHandler) ListItemTransactions(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	var txnType *models.TransactionType
	if typeStr := c.Query("type"); typeStr != "" {
		t := models.TransactionType(typeStr)
		txnType = &t
	}

	txns, total, err := h.ledger.ListTransactions(c.Request.Context(), &itemID, txnType, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionListResponse{
		Success: true,
		Data:    txns,
		Meta:    paginationMeta(total, page, limit),
	})
}
