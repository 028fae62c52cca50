package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stock-ledger-service/internal/models"
)

// CreateTransaction appends a ledger entry. Entries are never updated or
// deleted afterwards.
func (r *LedgerRepository) CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	txn.CreatedAt = time.Now()
	return translateError(r.db.WithContext(ctx).Create(txn).Error)
}

// GetTransactionByID retrieves a single ledger entry
func (r *LedgerRepository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &txn, nil
}

// ListTransactions retrieves ledger entries with optional filtering,
// newest first
func (r *LedgerRepository) ListTransactions(ctx context.Context, itemID *uuid.UUID, txnType *models.TransactionType, page, limit int) ([]models.InventoryTransaction, int64, error) {
	var txns []models.InventoryTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.InventoryTransaction{})

	if itemID != nil {
		query = query.Where("item_id = ?", *itemID)
	}
	if txnType != nil {
		query = query.Where("type = ?", *txnType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	if err := query.Order("created_at DESC").Find(&txns).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return txns, total, nil
}
