package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrderStatus represents the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "DRAFT"
	POStatusPendingApproval   PurchaseOrderStatus = "PENDING_APPROVAL"
	POStatusApproved          PurchaseOrderStatus = "APPROVED"
	POStatusSent              PurchaseOrderStatus = "SENT"
	POStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	POStatusReceived          PurchaseOrderStatus = "RECEIVED"
	POStatusCancelled         PurchaseOrderStatus = "CANCELLED"
	POStatusClosed            PurchaseOrderStatus = "CLOSED"
)

// PurchaseOrder represents a replenishment order sent to a supplier
type PurchaseOrder struct {
	ID                   uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PONumber             string              `json:"poNumber" gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_orders_number"`
	SupplierID           uuid.UUID           `json:"supplierId" gorm:"type:uuid;not null;index:idx_purchase_orders_supplier"`
	Status               PurchaseOrderStatus `json:"status" gorm:"type:varchar(30);not null;default:'DRAFT';index:idx_purchase_orders_status"`
	OrderDate            time.Time           `json:"orderDate" gorm:"not null"`
	ExpectedDeliveryDate *time.Time          `json:"expectedDeliveryDate,omitempty"`
	ActualDeliveryDate   *time.Time          `json:"actualDeliveryDate,omitempty"`
	Subtotal             decimal.Decimal     `json:"subtotal" gorm:"type:decimal(18,4);not null;default:0"`
	Tax                  decimal.Decimal     `json:"tax" gorm:"type:decimal(18,4);not null;default:0"`
	Shipping             decimal.Decimal     `json:"shipping" gorm:"type:decimal(18,4);not null;default:0"`
	Total                decimal.Decimal     `json:"total" gorm:"type:decimal(18,4);not null;default:0"`
	Notes                *string             `json:"notes,omitempty" gorm:"type:text"`
	ApprovedBy           *string             `json:"approvedBy,omitempty" gorm:"type:varchar(255)"`
	ApprovedAt           *time.Time          `json:"approvedAt,omitempty"`
	CreatedBy            *string             `json:"createdBy,omitempty" gorm:"type:varchar(255)"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt      `json:"-" gorm:"index"`

	Lines []PurchaseOrderLine `json:"lines,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLine represents one item on a purchase order
type PurchaseOrderLine struct {
	ID                   uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PurchaseOrderID      uuid.UUID       `json:"purchaseOrderId" gorm:"type:uuid;not null;index:idx_purchase_order_lines_po"`
	ItemID               uuid.UUID       `json:"itemId" gorm:"type:uuid;not null;index:idx_purchase_order_lines_item"`
	QuantityOrdered      decimal.Decimal `json:"quantityOrdered" gorm:"type:decimal(18,4);not null"`
	QuantityReceived     decimal.Decimal `json:"quantityReceived" gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost             decimal.Decimal `json:"unitCost" gorm:"type:decimal(18,4);not null"`
	LineTotal            decimal.Decimal `json:"lineTotal" gorm:"type:decimal(18,4);not null"`
	ExpectedDeliveryDate *time.Time      `json:"expectedDeliveryDate,omitempty"`
	ActualDeliveryDate   *time.Time      `json:"actualDeliveryDate,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// IsFullyReceived reports whether the ordered quantity has been delivered
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.QuantityReceived.GreaterThanOrEqual(l.QuantityOrdered)
}

// RemainingQuantity returns the quantity still outstanding on the line
func (l *PurchaseOrderLine) RemainingQuantity() decimal.Decimal {
	remaining := l.QuantityOrdered.Sub(l.QuantityReceived)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// CreatePOLineRequest represents one line on a new purchase order
type CreatePOLineRequest struct {
	ItemID               uuid.UUID       `json:"itemId" binding:"required"`
	QuantityOrdered      decimal.Decimal `json:"quantityOrdered" binding:"required"`
	UnitCost             decimal.Decimal `json:"unitCost"`
	ExpectedDeliveryDate *time.Time      `json:"expectedDeliveryDate,omitempty"`
}

// CreatePurchaseOrderRequest represents the request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID           uuid.UUID             `json:"supplierId" binding:"required"`
	ExpectedDeliveryDate *time.Time            `json:"expectedDeliveryDate,omitempty"`
	Tax                  decimal.Decimal       `json:"tax"`
	Shipping             decimal.Decimal       `json:"shipping"`
	Notes                *string               `json:"notes,omitempty"`
	Lines                []CreatePOLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdatePOLineRequest represents the request to update a draft line
type UpdatePOLineRequest struct {
	QuantityOrdered      *decimal.Decimal `json:"quantityOrdered,omitempty"`
	UnitCost             *decimal.Decimal `json:"unitCost,omitempty"`
	ExpectedDeliveryDate *time.Time       `json:"expectedDeliveryDate,omitempty"`
}

// ReceiveLineInput identifies a line and the delivered quantity
type ReceiveLineInput struct {
	LineID   uuid.UUID       `json:"lineId" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ReceivePurchaseOrderRequest represents the request to record a delivery
type ReceivePurchaseOrderRequest struct {
	Lines []ReceiveLineInput `json:"lines" binding:"required,min=1,dive"`
}

// CancelPurchaseOrderRequest represents the request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PurchaseOrderResponse represents a single purchase order response
type PurchaseOrderResponse struct {
	Success bool           `json:"success"`
	Data    *PurchaseOrder `json:"data"`
}

// PurchaseOrderListResponse represents a paginated list of purchase orders
type PurchaseOrderListResponse struct {
	Success bool            `json:"success"`
	Data    []PurchaseOrder `json:"data"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
}

// PurchaseOrderLineResponse represents a single line response
type PurchaseOrderLineResponse struct {
	Success bool               `json:"success"`
	Data    *PurchaseOrderLine `json:"data"`
}
