package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/services"
)

type PurchaseOrderHandler struct {
	svc *services.PurchaseOrderService
}

func NewPurchaseOrderHandler(svc *services.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{svc: svc}
}

// CreatePurchaseOrder creates a draft purchase order
// POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req models.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	po, err := h.svc.Create(c.Request.Context(), req, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.PurchaseOrderResponse{Success: true, Data: po})
}

// GetPurchaseOrder retrieves a purchase order with its lines
// GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	po, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// ListPurchaseOrders retrieves purchase orders with optional filtering
// GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	page, limit := parsePagination(c)

	var status *models.PurchaseOrderStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.PurchaseOrderStatus(statusStr)
		status = &s
	}

	var supplierID *uuid.UUID
	if supplierStr := c.Query("supplierId"); supplierStr != "" {
		id, err := uuid.Parse(supplierStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid supplierId"},
			})
			return
		}
		supplierID = &id
	}

	orders, total, err := h.svc.List(c.Request.Context(), status, supplierID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderListResponse{
		Success: true,
		Data:    orders,
		Meta:    paginationMeta(total, page, limit),
	})
}

// SubmitPurchaseOrder sends a draft order into the approval queue
// POST /api/v1/purchase-orders/:id/submit
func (h *PurchaseOrderHandler) SubmitPurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	po, err := h.svc.SubmitForApproval(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// ApprovePurchaseOrder approves a pending order
// POST /api/v1/purchase-orders/:id/approve
func (h *PurchaseOrderHandler) ApprovePurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	po, err := h.svc.Approve(c.Request.Context(), id, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// SendPurchaseOrder marks an approved order as sent to the supplier
// POST /api/v1/purchase-orders/:id/send
func (h *PurchaseOrderHandler) SendPurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	po, err := h.svc.Send(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// ReceivePurchaseOrder records a delivery against an order
// POST /api/v1/purchase-orders/:id/receive
func (h *PurchaseOrderHandler) ReceivePurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ReceivePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	po, err := h.svc.Receive(c.Request.Context(), id, req, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// CancelPurchaseOrder aborts an order
// POST /api/v1/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) CancelPurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CancelPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	po, err := h.svc.Cancel(c.Request.Context(), id, req.Reason, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// ClosePurchaseOrder archives a fully received order
// POST /api/v1/purchase-orders/:id/close
func (h *PurchaseOrderHandler) ClosePurchaseOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	po, err := h.svc.Close(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// AddPurchaseOrderLine appends a line to an editable order
// POST /api/v1/purchase-orders/:id/lines
func (h *PurchaseOrderHandler) AddPurchaseOrderLine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CreatePOLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	po, err := h.svc.AddLine(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.PurchaseOrderResponse{Success: true, Data: po})
}

// UpdatePurchaseOrderLine edits a line on an editable order
// PUT /api/v1/purchase-orders/:id/lines/:lineId
func (h *PurchaseOrderHandler) UpdatePurchaseOrderLine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseUUIDParam(c, "lineId")
	if !ok {
		return
	}

	var req models.UpdatePOLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	po, err := h.svc.UpdateLine(c.Request.Context(), id, lineID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}

// DeletePurchaseOrderLine removes a line from an editable order
// DELETE /api/v1/purchase-orders/:id/lines/:lineId
func (h *PurchaseOrderHandler) DeletePurchaseOrderLine(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseUUIDParam(c, "lineId")
	if !ok {
		return
	}

	po, err := h.svc.DeleteLine(c.Request.Context(), id, lineID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PurchaseOrderResponse{Success: true, Data: po})
}
