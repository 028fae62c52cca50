package models

// Sequence scopes for document numbering
const (
	SequenceScopePurchaseOrders        = "purchase_orders"
	SequenceScopeInventoryTransactions = "inventory_transactions"
)

// DocumentSequence is a per-year counter backing document number allocation.
// The composite key lets each document family keep an independent counter
// that resets every calendar year.
type DocumentSequence struct {
	Scope string `json:"scope" gorm:"type:varchar(50);primaryKey"`
	Name  string `json:"name" gorm:"type:varchar(20);primaryKey"`
	Year  int    `json:"year" gorm:"primaryKey"`
	Value int64  `json:"value" gorm:"not null;default:0"`
}

func (DocumentSequence) TableName() string {
	return "document_sequences"
}
