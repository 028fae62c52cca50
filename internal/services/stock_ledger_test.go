package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newLedgerService(repo repository.LedgerRepositoryInterface) *StockLedgerService {
	logger := newTestLogger()
	return NewStockLedgerService(repo, NewAlertManager(logger), NewNumberAllocator(logger), nil, logger)
}

func testItem(onHand, reorderLevel int64) *models.InventoryItem {
	return &models.InventoryItem{
		ID:                uuid.New(),
		Code:              "ITM-001",
		Name:              "Copper Pipe 15mm",
		Unit:              "EA",
		UnitCost:          decimal.NewFromFloat(12.5),
		QuantityOnHand:    decimal.NewFromInt(onHand),
		QuantityAllocated: decimal.Zero,
		QuantityAvailable: decimal.NewFromInt(onHand),
		QuantityOnOrder:   decimal.Zero,
		ReorderLevel:      decimal.NewFromInt(reorderLevel),
		Status:            models.ComputeItemStatus(decimal.NewFromInt(onHand), decimal.NewFromInt(reorderLevel), decimal.Zero),
	}
}

func expectTransaction(repo *MockLedgerRepository, item *models.InventoryItem, sequence int64) {
	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetItemForUpdate", mock.Anything, item.ID).Return(item, nil)
	repo.On("NextSequenceValue", mock.Anything, models.SequenceScopeInventoryTransactions, "TXN", time.Now().Year()).Return(sequence, nil)
	repo.On("ApplyItemQuantities", mock.Anything, item).Return(nil)
	repo.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*models.InventoryTransaction")).Return(nil)
}

func TestRecordTransactionReceipt(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	item := testItem(20, 10)
	expectTransaction(repo, item, 1)

	result, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   item.ID,
		Type:     models.TransactionTypeReceipt,
		Quantity: decimal.NewFromInt(5),
	}, "tester")

	assert.NoError(t, err)
	assert.True(t, result.Item.QuantityOnHand.Equal(decimal.NewFromInt(25)), "on hand should be 25, got %s", result.Item.QuantityOnHand)
	assert.True(t, result.Transaction.BalanceAfter.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, models.ItemStatusInStock, result.Item.Status)
	assert.NotNil(t, result.Item.LastRestockedAt)
	assert.Equal(t, FormatDocumentNumber("TXN", time.Now().Year(), 1), result.Transaction.TransactionNumber)
	repo.AssertExpectations(t)
}

func TestRecordTransactionIssueCrossesThreshold(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	item := testItem(12, 10)
	expectTransaction(repo, item, 2)
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(nil, repository.ErrNotFound)
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*models.StockAlert")).Return(nil)

	result, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   item.ID,
		Type:     models.TransactionTypeIssue,
		Quantity: decimal.NewFromInt(4),
	}, "tester")

	assert.NoError(t, err)
	assert.True(t, result.Item.QuantityOnHand.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, models.ItemStatusLowStock, result.Item.Status)
	assert.Nil(t, result.Item.LastRestockedAt)
	repo.AssertExpectations(t)
}

func TestRecordTransactionIssueAllowsOverdraw(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	item := testItem(3, 0)
	expectTransaction(repo, item, 3)
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(nil, repository.ErrNotFound)
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*models.StockAlert")).Return(nil)

	result, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   item.ID,
		Type:     models.TransactionTypeIssue,
		Quantity: decimal.NewFromInt(5),
	}, "tester")

	assert.NoError(t, err)
	assert.True(t, result.Item.QuantityOnHand.Equal(decimal.NewFromInt(-2)), "overdraw must be recorded, got %s", result.Item.QuantityOnHand)
	assert.True(t, result.Transaction.BalanceAfter.Equal(decimal.NewFromInt(-2)))
	repo.AssertExpectations(t)
}

func TestRecordTransactionAdjustmentSetsAbsolute(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	item := testItem(50, 10)
	expectTransaction(repo, item, 4)

	result, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   item.ID,
		Type:     models.TransactionTypeAdjustment,
		Quantity: decimal.NewFromInt(32),
	}, "tester")

	assert.NoError(t, err)
	assert.True(t, result.Item.QuantityOnHand.Equal(decimal.NewFromInt(32)), "adjustment sets the absolute quantity")
	assert.Nil(t, result.Item.LastRestockedAt, "adjustment is not a restock")
	repo.AssertExpectations(t)
}

func TestRecordTransactionWriteOffToZero(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	item := testItem(5, 3)
	expectTransaction(repo, item, 5)
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(nil, repository.ErrNotFound)
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*models.StockAlert")).Return(nil)

	result, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   item.ID,
		Type:     models.TransactionTypeWriteOff,
		Quantity: decimal.NewFromInt(5),
	}, "tester")

	assert.NoError(t, err)
	assert.True(t, result.Item.QuantityOnHand.IsZero())
	assert.Equal(t, models.ItemStatusOutOfStock, result.Item.Status)
	repo.AssertExpectations(t)
}

func TestRecordTransactionUsesOverrideUnitCost(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	item := testItem(10, 2)
	expectTransaction(repo, item, 6)

	override := decimal.NewFromFloat(9.25)
	result, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   item.ID,
		Type:     models.TransactionTypeReceipt,
		Quantity: decimal.NewFromInt(4),
		UnitCost: &override,
	}, "tester")

	assert.NoError(t, err)
	assert.True(t, result.Transaction.UnitCost.Equal(override))
	assert.True(t, result.Transaction.TotalCost.Equal(decimal.NewFromInt(37)), "4 * 9.25 = 37, got %s", result.Transaction.TotalCost)
	repo.AssertExpectations(t)
}

func TestRecordTransactionValidation(t *testing.T) {
	tests := []struct {
		name     string
		txnType  models.TransactionType
		quantity decimal.Decimal
	}{
		{"unknown type", models.TransactionType("TRANSFER"), decimal.NewFromInt(1)},
		{"zero quantity issue", models.TransactionTypeIssue, decimal.Zero},
		{"negative quantity receipt", models.TransactionTypeReceipt, decimal.NewFromInt(-3)},
		{"negative adjustment", models.TransactionTypeAdjustment, decimal.NewFromInt(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLedgerRepository)
			svc := newLedgerService(repo)
			repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
			repo.On("GetItemForUpdate", mock.Anything, mock.Anything).Return(testItem(10, 2), nil).Maybe()

			_, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
				ItemID:   uuid.New(),
				Type:     tt.txnType,
				Quantity: tt.quantity,
			}, "tester")

			assert.ErrorIs(t, err, ErrValidation)
			repo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		})
	}
}

func TestRecordTransactionItemNotFound(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetItemForUpdate", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	_, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   uuid.New(),
		Type:     models.TransactionTypeReceipt,
		Quantity: decimal.NewFromInt(1),
	}, "tester")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordTransactionAlertFailureDoesNotBlock(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newLedgerService(repo)

	item := testItem(12, 10)
	expectTransaction(repo, item, 7)
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(nil, assert.AnError)

	result, err := svc.RecordTransaction(context.Background(), models.RecordTransactionRequest{
		ItemID:   item.ID,
		Type:     models.TransactionTypeIssue,
		Quantity: decimal.NewFromInt(4),
	}, "tester")

	assert.NoError(t, err, "alert failures must not roll back the posting")
	assert.True(t, result.Item.QuantityOnHand.Equal(decimal.NewFromInt(8)))
	repo.AssertNotCalled(t, "CreateAlert", mock.Anything, mock.Anything)
}
