package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a stock ledger entry
type TransactionType string

const (
	TransactionTypeReceipt    TransactionType = "RECEIPT"
	TransactionTypeIssue      TransactionType = "ISSUE"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	TransactionTypeReturn     TransactionType = "RETURN"
	TransactionTypeWriteOff   TransactionType = "WRITE_OFF"
)

// IsValid reports whether the transaction type is one of the known kinds
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReceipt, TransactionTypeIssue, TransactionTypeAdjustment,
		TransactionTypeReturn, TransactionTypeWriteOff:
		return true
	}
	return false
}

// InventoryTransaction is an immutable stock ledger entry. Entries are
// append-only; corrections are made with compensating entries.
type InventoryTransaction struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TransactionNumber string          `json:"transactionNumber" gorm:"type:varchar(50);not null;uniqueIndex:idx_inventory_transactions_number"`
	ItemID            uuid.UUID       `json:"itemId" gorm:"type:uuid;not null;index:idx_inventory_transactions_item"`
	Type              TransactionType `json:"type" gorm:"type:varchar(20);not null;index:idx_inventory_transactions_type"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `json:"unitCost" gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost         decimal.Decimal `json:"totalCost" gorm:"type:decimal(18,4);not null;default:0"`
	BalanceAfter      decimal.Decimal `json:"balanceAfter" gorm:"type:decimal(18,4);not null"`
	PurchaseOrderID   *uuid.UUID      `json:"purchaseOrderId,omitempty" gorm:"type:uuid;index:idx_inventory_transactions_po"`
	JobID             *uuid.UUID      `json:"jobId,omitempty" gorm:"type:uuid"`
	BidID             *uuid.UUID      `json:"bidId,omitempty" gorm:"type:uuid"`
	Notes             *string         `json:"notes,omitempty" gorm:"type:text"`
	PerformedBy       string          `json:"performedBy" gorm:"type:varchar(255);not null"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// RecordTransactionRequest represents the request to post a ledger entry
type RecordTransactionRequest struct {
	ItemID          uuid.UUID        `json:"itemId" binding:"required"`
	Type            TransactionType  `json:"type" binding:"required"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	UnitCost        *decimal.Decimal `json:"unitCost,omitempty"`
	PurchaseOrderID *uuid.UUID       `json:"purchaseOrderId,omitempty"`
	JobID           *uuid.UUID       `json:"jobId,omitempty"`
	BidID           *uuid.UUID       `json:"bidId,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// RecordTransactionResult pairs the created ledger entry with the item
// state it produced
type RecordTransactionResult struct {
	Transaction *InventoryTransaction `json:"transaction"`
	Item        *InventoryItem        `json:"item"`
}

// TransactionResponse represents a single ledger posting response
type TransactionResponse struct {
	Success bool                     `json:"success"`
	Data    *RecordTransactionResult `json:"data"`
}

// TransactionListResponse represents a paginated list of ledger entries
type TransactionListResponse struct {
	Success bool                   `json:"success"`
	Data    []InventoryTransaction `json:"data"`
	Meta    *PaginationMeta        `json:"meta,omitempty"`
}
