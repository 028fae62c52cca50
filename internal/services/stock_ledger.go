package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/events"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// StockLedgerService posts immutable stock movements and keeps the item
// quantity snapshot consistent with them. Every posting runs in a single
// transaction holding a row lock on the item.
type StockLedgerService struct {
	repo      repository.LedgerRepositoryInterface
	alerts    *AlertManager
	numbers   *NumberAllocator
	publisher *events.StockEventPublisher
	logger    *logrus.Entry
}

func NewStockLedgerService(
	repo repository.LedgerRepositoryInterface,
	alerts *AlertManager,
	numbers *NumberAllocator,
	publisher *events.StockEventPublisher,
	logger *logrus.Logger,
) *StockLedgerService {
	return &StockLedgerService{
		repo:      repo,
		alerts:    alerts,
		numbers:   numbers,
		publisher: publisher,
		logger:    logger.WithField("component", "stock_ledger"),
	}
}

// recordInput is the internal form of a posting request. reduceOnOrder is
// set when receiving against a purchase order so the open order quantity
// is drawn down alongside the on-hand increase.
type recordInput struct {
	ItemID          uuid.UUID
	Type            models.TransactionType
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
	PurchaseOrderID *uuid.UUID
	JobID           *uuid.UUID
	BidID           *uuid.UUID
	Notes           *string
	PerformedBy     string
	reduceOnOrder   bool
}

func validateRecordInput(input recordInput) error {
	if !input.Type.IsValid() {
		return &ValidationError{Field: "type", Message: "unknown transaction type"}
	}
	if input.Type == models.TransactionTypeAdjustment {
		if input.Quantity.IsNegative() {
			return &ValidationError{Field: "quantity", Message: "adjustment quantity must not be negative"}
		}
		return nil
	}
	if !input.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Message: "quantity must be positive"}
	}
	return nil
}

// RecordTransaction posts a stock movement and returns the ledger entry
// together with the updated item. Events are published only after the
// transaction commits.
func (s *StockLedgerService) RecordTransaction(ctx context.Context, req models.RecordTransactionRequest, performedBy string) (*models.RecordTransactionResult, error) {
	input := recordInput{
		ItemID:          req.ItemID,
		Type:            req.Type,
		Quantity:        req.Quantity,
		UnitCost:        req.UnitCost,
		PurchaseOrderID: req.PurchaseOrderID,
		JobID:           req.JobID,
		BidID:           req.BidID,
		Notes:           req.Notes,
		PerformedBy:     performedBy,
	}

	var entry *models.InventoryTransaction
	var item *models.InventoryItem
	var previous decimal.Decimal

	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		var txErr error
		entry, item, previous, txErr = s.recordTx(ctx, tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"transaction": entry.TransactionNumber,
		"item_id":     item.ID,
		"type":        entry.Type,
		"quantity":    entry.Quantity,
		"balance":     entry.BalanceAfter,
	}).Info("Stock transaction recorded")

	s.publishStockEvents(ctx, item, entry, previous)

	return &models.RecordTransactionResult{Transaction: entry, Item: item}, nil
}

// RecordReceiptTx posts a purchase receipt inside an existing unit of
// work. Used by purchase order receiving so the ledger entries commit or
// roll back with the order update.
func (s *StockLedgerService) RecordReceiptTx(ctx context.Context, tx repository.LedgerRepositoryInterface, itemID uuid.UUID, quantity, unitCost decimal.Decimal, purchaseOrderID uuid.UUID, performedBy string) (*models.InventoryTransaction, error) {
	entry, _, _, err := s.recordTx(ctx, tx, recordInput{
		ItemID:          itemID,
		Type:            models.TransactionTypeReceipt,
		Quantity:        quantity,
		UnitCost:        &unitCost,
		PurchaseOrderID: &purchaseOrderID,
		PerformedBy:     performedBy,
		reduceOnOrder:   true,
	})
	return entry, err
}

// recordTx applies a single posting against a locked item. Receipts and
// returns add to stock, issues and write-offs subtract, adjustments set
// the absolute on-hand quantity. Issues may drive the balance negative;
// overdraw protection is left to callers.
func (s *StockLedgerService) recordTx(ctx context.Context, tx repository.LedgerRepositoryInterface, input recordInput) (*models.InventoryTransaction, *models.InventoryItem, decimal.Decimal, error) {
	if err := validateRecordInput(input); err != nil {
		return nil, nil, decimal.Zero, err
	}

	item, err := tx.GetItemForUpdate(ctx, input.ItemID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}

	previous := item.QuantityOnHand

	switch input.Type {
	case models.TransactionTypeReceipt, models.TransactionTypeReturn:
		item.QuantityOnHand = previous.Add(input.Quantity)
	case models.TransactionTypeIssue, models.TransactionTypeWriteOff:
		item.QuantityOnHand = previous.Sub(input.Quantity)
	case models.TransactionTypeAdjustment:
		item.QuantityOnHand = input.Quantity
	}

	if input.reduceOnOrder {
		onOrder := item.QuantityOnOrder.Sub(input.Quantity)
		if onOrder.IsNegative() {
			onOrder = decimal.Zero
		}
		item.QuantityOnOrder = onOrder
	}

	if input.Type == models.TransactionTypeReceipt {
		now := time.Now()
		item.LastRestockedAt = &now
	}

	item.RecomputeDerived()

	number, err := s.numbers.Allocate(ctx, tx, "TXN", models.SequenceScopeInventoryTransactions)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}

	unitCost := item.UnitCost
	if input.UnitCost != nil {
		unitCost = *input.UnitCost
	}

	entry := &models.InventoryTransaction{
		TransactionNumber: number,
		ItemID:            item.ID,
		Type:              input.Type,
		Quantity:          input.Quantity,
		UnitCost:          unitCost,
		TotalCost:         input.Quantity.Mul(unitCost),
		BalanceAfter:      item.QuantityOnHand,
		PurchaseOrderID:   input.PurchaseOrderID,
		JobID:             input.JobID,
		BidID:             input.BidID,
		Notes:             input.Notes,
		PerformedBy:       input.PerformedBy,
	}

	if err := tx.ApplyItemQuantities(ctx, item); err != nil {
		return nil, nil, decimal.Zero, err
	}
	if err := tx.CreateTransaction(ctx, entry); err != nil {
		return nil, nil, decimal.Zero, err
	}

	// Alert creation is best effort: a failure must not roll back the
	// stock movement itself.
	if item.Status == models.ItemStatusLowStock || item.Status == models.ItemStatusOutOfStock {
		if _, alertErr := s.alerts.CheckAndCreate(ctx, tx, item); alertErr != nil {
			s.logger.WithError(alertErr).WithField("item_id", item.ID).
				Warn("Stock alert creation failed, continuing")
		}
	}

	return entry, item, previous, nil
}

// publishStockEvents emits post-commit notifications. Threshold events
// fire only when the posting crossed the reorder level downwards.
func (s *StockLedgerService) publishStockEvents(ctx context.Context, item *models.InventoryItem, entry *models.InventoryTransaction, previous decimal.Decimal) {
	if s.publisher == nil {
		return
	}

	reason := string(entry.Type)
	if entry.Notes != nil && *entry.Notes != "" {
		reason = *entry.Notes
	}
	if err := s.publisher.PublishStockAdjusted(ctx, item, previous, reason, entry.PerformedBy); err != nil {
		s.logger.WithError(err).Warn("Failed to publish stock adjusted event")
	}

	crossedThreshold := previous.GreaterThan(item.ReorderLevel) &&
		item.QuantityOnHand.LessThanOrEqual(item.ReorderLevel)
	if !crossedThreshold {
		return
	}

	if item.QuantityOnHand.IsZero() {
		if err := s.publisher.PublishOutOfStockAlert(ctx, item); err != nil {
			s.logger.WithError(err).Warn("Failed to publish out of stock event")
		}
		return
	}
	if err := s.publisher.PublishLowStockAlert(ctx, item); err != nil {
		s.logger.WithError(err).Warn("Failed to publish low stock event")
	}
}

// GetTransaction retrieves one ledger entry
func (s *StockLedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*models.InventoryTransaction, error) {
	return s.repo.GetTransactionByID(ctx, id)
}

// ListTransactions retrieves ledger entries with optional filtering
func (s *StockLedgerService) ListTransactions(ctx context.Context, itemID *uuid.UUID, txnType *models.TransactionType, page, limit int) ([]models.InventoryTransaction, int64, error) {
	return s.repo.ListTransactions(ctx, itemID, txnType, page, limit)
}
