package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

func newCatalogService(repo repository.LedgerRepositoryInterface) *ItemCatalogService {
	return NewItemCatalogService(repo, newTestLogger())
}

func TestCreateItemDefaults(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newCatalogService(repo)

	repo.On("CreateItem", mock.Anything, mock.AnythingOfType("*models.InventoryItem")).Return(nil)

	item, err := svc.CreateItem(context.Background(), models.CreateItemRequest{
		Code:         "PIPE-15",
		Name:         "Copper Pipe 15mm",
		UnitCost:     decimal.NewFromFloat(12.5),
		ReorderLevel: decimal.NewFromInt(10),
	}, "admin")

	assert.NoError(t, err)
	assert.Equal(t, "EA", item.Unit)
	assert.Equal(t, models.ItemStatusOutOfStock, item.Status)
	assert.True(t, item.QuantityOnHand.IsZero())
	assert.True(t, item.QuantityAvailable.IsZero())
	assert.Equal(t, "admin", *item.CreatedBy)
	repo.AssertExpectations(t)
}

func TestCreateItemValidation(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newCatalogService(repo)

	tests := []struct {
		name string
		req  models.CreateItemRequest
	}{
		{"negative unit cost", models.CreateItemRequest{Code: "X", Name: "X", UnitCost: decimal.NewFromInt(-1)}},
		{"negative reorder level", models.CreateItemRequest{Code: "X", Name: "X", ReorderLevel: decimal.NewFromInt(-1)}},
		{"negative reorder quantity", models.CreateItemRequest{Code: "X", Name: "X", ReorderQuantity: decimal.NewFromInt(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(context.Background(), tt.req, "admin")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	repo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

func TestUpdateItemTracksHistory(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newCatalogService(repo)

	item := testItem(20, 5)
	newName := "Copper Pipe 22mm"
	newCost := decimal.NewFromFloat(14.75)

	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetItemForUpdate", mock.Anything, item.ID).Return(item, nil)
	repo.On("UpdateItem", mock.Anything, item.ID, mock.MatchedBy(func(updates map[string]interface{}) bool {
		return updates["name"] == newName && updates["updated_by"] == "admin"
	})).Return(nil)

	var history []models.ItemHistory
	repo.On("CreateItemHistory", mock.Anything, mock.AnythingOfType("*models.ItemHistory")).
		Run(func(args mock.Arguments) {
			history = append(history, *args.Get(1).(*models.ItemHistory))
		}).Return(nil)
	repo.On("GetItemByID", mock.Anything, item.ID).Return(item, nil)

	_, err := svc.UpdateItem(context.Background(), item.ID, models.UpdateItemRequest{
		Name:     &newName,
		UnitCost: &newCost,
	}, "admin")

	assert.NoError(t, err)
	assert.Len(t, history, 2)
	fields := []string{history[0].Field, history[1].Field}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "unit_cost")
	repo.AssertExpectations(t)
}

func TestUpdateItemReorderLevelRecomputesStatus(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newCatalogService(repo)

	item := testItem(20, 5)
	newLevel := decimal.NewFromInt(25)

	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetItemForUpdate", mock.Anything, item.ID).Return(item, nil)
	repo.On("UpdateItem", mock.Anything, item.ID, mock.MatchedBy(func(updates map[string]interface{}) bool {
		return updates["status"] == models.ItemStatusLowStock
	})).Return(nil)
	repo.On("CreateItemHistory", mock.Anything, mock.AnythingOfType("*models.ItemHistory")).Return(nil)
	repo.On("GetItemByID", mock.Anything, item.ID).Return(item, nil)

	_, err := svc.UpdateItem(context.Background(), item.ID, models.UpdateItemRequest{
		ReorderLevel: &newLevel,
	}, "admin")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateItemUnchangedFieldsSkipHistory(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newCatalogService(repo)

	item := testItem(20, 5)
	sameName := item.Name

	repo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetItemForUpdate", mock.Anything, item.ID).Return(item, nil)
	repo.On("UpdateItem", mock.Anything, item.ID, mock.Anything).Return(nil)
	repo.On("GetItemByID", mock.Anything, item.ID).Return(item, nil)

	_, err := svc.UpdateItem(context.Background(), item.ID, models.UpdateItemRequest{
		Name: &sameName,
	}, "admin")

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "CreateItemHistory", mock.Anything, mock.Anything)
}

func TestGetItemHistoryUnknownItem(t *testing.T) {
	repo := new(MockLedgerRepository)
	svc := newCatalogService(repo)

	item := testItem(1, 1)
	repo.On("GetItemByID", mock.Anything, item.ID).Return(nil, repository.ErrNotFound)

	_, err := svc.GetItemHistory(context.Background(), item.ID)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	repo.AssertNotCalled(t, "ListItemHistory", mock.Anything, mock.Anything)
}
