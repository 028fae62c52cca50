package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

func TestCheckAndCreateAboveThreshold(t *testing.T) {
	repo := new(MockLedgerRepository)
	manager := NewAlertManager(newTestLogger())

	item := testItem(15, 10)
	created, err := manager.CheckAndCreate(context.Background(), repo, item)

	assert.NoError(t, err)
	assert.False(t, created)
	repo.AssertNotCalled(t, "CreateAlert", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "GetUnresolvedAlertForItem", mock.Anything, mock.Anything)
}

func TestCheckAndCreateLowStock(t *testing.T) {
	repo := new(MockLedgerRepository)
	manager := NewAlertManager(newTestLogger())

	item := testItem(8, 10)
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(nil, repository.ErrNotFound)

	var alert *models.StockAlert
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*models.StockAlert")).
		Run(func(args mock.Arguments) {
			alert = args.Get(1).(*models.StockAlert)
		}).Return(nil)

	created, err := manager.CheckAndCreate(context.Background(), repo, item)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.NotNil(t, alert)
	assert.Equal(t, models.AlertTypeLowStock, alert.AlertType)
	assert.Equal(t, models.AlertSeverityWarning, alert.Severity)
	assert.Equal(t, item.ID, alert.ItemID)
	assert.True(t, alert.CurrentQuantity.Equal(decimal.NewFromInt(8)))
	assert.True(t, alert.ThresholdQuantity.Equal(decimal.NewFromInt(10)))
	assert.Contains(t, alert.Message, item.Name)
	repo.AssertExpectations(t)
}

func TestCheckAndCreateOutOfStock(t *testing.T) {
	repo := new(MockLedgerRepository)
	manager := NewAlertManager(newTestLogger())

	item := testItem(0, 10)
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(nil, repository.ErrNotFound)

	var alert *models.StockAlert
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*models.StockAlert")).
		Run(func(args mock.Arguments) {
			alert = args.Get(1).(*models.StockAlert)
		}).Return(nil)

	created, err := manager.CheckAndCreate(context.Background(), repo, item)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.AlertTypeOutOfStock, alert.AlertType)
	assert.Equal(t, models.AlertSeverityCritical, alert.Severity)
	repo.AssertExpectations(t)
}

func TestCheckAndCreateDeduplicates(t *testing.T) {
	repo := new(MockLedgerRepository)
	manager := NewAlertManager(newTestLogger())

	item := testItem(4, 10)
	existing := &models.StockAlert{
		ID:        uuid.New(),
		ItemID:    item.ID,
		AlertType: models.AlertTypeLowStock,
	}
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(existing, nil)

	created, err := manager.CheckAndCreate(context.Background(), repo, item)

	assert.NoError(t, err)
	assert.False(t, created)
	repo.AssertNotCalled(t, "CreateAlert", mock.Anything, mock.Anything)
}

func TestCheckAndCreateLookupFailure(t *testing.T) {
	repo := new(MockLedgerRepository)
	manager := NewAlertManager(newTestLogger())

	item := testItem(4, 10)
	repo.On("GetUnresolvedAlertForItem", mock.Anything, item.ID).Return(nil, assert.AnError)

	created, err := manager.CheckAndCreate(context.Background(), repo, item)

	assert.Error(t, err)
	assert.False(t, created)
	repo.AssertNotCalled(t, "CreateAlert", mock.Anything, mock.Anything)
}
