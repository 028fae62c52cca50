package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemStatus represents the stock status of an inventory item
type ItemStatus string

const (
	ItemStatusInStock    ItemStatus = "IN_STOCK"
	ItemStatusLowStock   ItemStatus = "LOW_STOCK"
	ItemStatusOutOfStock ItemStatus = "OUT_OF_STOCK"
	ItemStatusOnOrder    ItemStatus = "ON_ORDER"
)

// ComputeItemStatus derives the stock status from the current quantities.
// The checks are ordered: an exhausted item is OUT_OF_STOCK even when a
// replenishment order is open.
func ComputeItemStatus(onHand, reorderLevel, onOrder decimal.Decimal) ItemStatus {
	switch {
	case onHand.IsZero():
		return ItemStatusOutOfStock
	case onHand.LessThanOrEqual(reorderLevel):
		return ItemStatusLowStock
	case onOrder.IsPositive():
		return ItemStatusOnOrder
	default:
		return ItemStatusInStock
	}
}

// InventoryItem represents a stock-tracked item in the catalog
type InventoryItem struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code              string          `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_inventory_items_code"`
	Name              string          `json:"name" gorm:"type:varchar(255);not null"`
	Description       *string         `json:"description,omitempty" gorm:"type:text"`
	Unit              string          `json:"unit" gorm:"type:varchar(20);not null;default:'EA'"`
	UnitCost          decimal.Decimal `json:"unitCost" gorm:"type:decimal(18,4);not null;default:0"`
	QuantityOnHand    decimal.Decimal `json:"quantityOnHand" gorm:"type:decimal(18,4);not null;default:0"`
	QuantityAllocated decimal.Decimal `json:"quantityAllocated" gorm:"type:decimal(18,4);not null;default:0"`
	QuantityAvailable decimal.Decimal `json:"quantityAvailable" gorm:"type:decimal(18,4);not null;default:0"`
	QuantityOnOrder   decimal.Decimal `json:"quantityOnOrder" gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel      decimal.Decimal `json:"reorderLevel" gorm:"type:decimal(18,4);not null;default:0"`
	ReorderQuantity   decimal.Decimal `json:"reorderQuantity" gorm:"type:decimal(18,4);not null;default:0"`
	Status            ItemStatus      `json:"status" gorm:"type:varchar(20);not null;default:'OUT_OF_STOCK';index:idx_inventory_items_status"`
	LastRestockedAt   *time.Time      `json:"lastRestockedAt,omitempty"`
	CreatedBy         *string         `json:"createdBy,omitempty" gorm:"type:varchar(255)"`
	UpdatedBy         *string         `json:"updatedBy,omitempty" gorm:"type:varchar(255)"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// RecomputeDerived refreshes the available quantity and stock status after
// any quantity field changes. Callers mutate quantities, then call this
// before persisting.
func (i *InventoryItem) RecomputeDerived() {
	i.QuantityAvailable = i.QuantityOnHand.Sub(i.QuantityAllocated)
	i.Status = ComputeItemStatus(i.QuantityOnHand, i.ReorderLevel, i.QuantityOnOrder)
}

// ItemHistory records a change to a tracked field on an inventory item
type ItemHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ItemID    uuid.UUID `json:"itemId" gorm:"type:uuid;not null;index:idx_item_history_item"`
	Field     string    `json:"field" gorm:"type:varchar(100);not null"`
	OldValue  *string   `json:"oldValue,omitempty" gorm:"type:text"`
	NewValue  *string   `json:"newValue,omitempty" gorm:"type:text"`
	ChangedBy string    `json:"changedBy" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ItemHistory) TableName() string {
	return "item_history"
}

// CreateItemRequest represents the request to create an inventory item
type CreateItemRequest struct {
	Code            string          `json:"code" binding:"required,max=50"`
	Name            string          `json:"name" binding:"required,max=255"`
	Description     *string         `json:"description,omitempty"`
	Unit            string          `json:"unit,omitempty"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	ReorderLevel    decimal.Decimal `json:"reorderLevel"`
	ReorderQuantity decimal.Decimal `json:"reorderQuantity"`
}

// UpdateItemRequest represents the request to update an inventory item
type UpdateItemRequest struct {
	Name            *string          `json:"name,omitempty" binding:"omitempty,max=255"`
	Description     *string          `json:"description,omitempty"`
	Unit            *string          `json:"unit,omitempty"`
	UnitCost        *decimal.Decimal `json:"unitCost,omitempty"`
	ReorderLevel    *decimal.Decimal `json:"reorderLevel,omitempty"`
	ReorderQuantity *decimal.Decimal `json:"reorderQuantity,omitempty"`
}

// ItemResponse represents a single item response
type ItemResponse struct {
	Success bool           `json:"success"`
	Data    *InventoryItem `json:"data"`
}

// ItemListResponse represents a paginated list of items
type ItemListResponse struct {
	Success bool            `json:"success"`
	Data    []InventoryItem `json:"data"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
}

// ItemHistoryListResponse represents an item's change history
type ItemHistoryListResponse struct {
	Success bool          `json:"success"`
	Data    []ItemHistory `json:"data"`
}
