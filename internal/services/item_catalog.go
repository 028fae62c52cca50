package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// ItemCatalogService manages inventory item master data. Quantities are
// never edited here; only ledger postings move stock.
type ItemCatalogService struct {
	repo   repository.LedgerRepositoryInterface
	logger *logrus.Entry
}

func NewItemCatalogService(repo repository.LedgerRepositoryInterface, logger *logrus.Logger) *ItemCatalogService {
	return &ItemCatalogService{
		repo:   repo,
		logger: logger.WithField("component", "item_catalog"),
	}
}

// CreateItem creates a catalog item with zero stock
func (s *ItemCatalogService) CreateItem(ctx context.Context, req models.CreateItemRequest, actor string) (*models.InventoryItem, error) {
	if req.UnitCost.IsNegative() {
		return nil, &ValidationError{Field: "unitCost", Message: "must not be negative"}
	}
	if req.ReorderLevel.IsNegative() {
		return nil, &ValidationError{Field: "reorderLevel", Message: "must not be negative"}
	}
	if req.ReorderQuantity.IsNegative() {
		return nil, &ValidationError{Field: "reorderQuantity", Message: "must not be negative"}
	}

	unit := req.Unit
	if unit == "" {
		unit = "EA"
	}

	item := &models.InventoryItem{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		Unit:            unit,
		UnitCost:        req.UnitCost,
		ReorderLevel:    req.ReorderLevel,
		ReorderQuantity: req.ReorderQuantity,
		CreatedBy:       &actor,
	}
	item.RecomputeDerived()

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"item_id": item.ID,
		"code":    item.Code,
	}).Info("Inventory item created")
	return item, nil
}

// GetItem retrieves an item by ID
func (s *ItemCatalogService) GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return s.repo.GetItemByID(ctx, id)
}

// ListItems retrieves items with optional filtering
func (s *ItemCatalogService) ListItems(ctx context.Context, status *models.ItemStatus, search string, page, limit int) ([]models.InventoryItem, int64, error) {
	return s.repo.ListItems(ctx, status, search, page, limit)
}

func historyValue(v interface{}) *string {
	s := fmt.Sprintf("%v", v)
	return &s
}

// UpdateItem applies a partial update to an item and records the change
// history for tracked fields. Stock quantities are out of scope here.
func (s *ItemCatalogService) UpdateItem(ctx context.Context, id uuid.UUID, req models.UpdateItemRequest, actor string) (*models.InventoryItem, error) {
	var updated *models.InventoryItem

	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		item, err := tx.GetItemForUpdate(ctx, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by": actor}
		var history []models.ItemHistory

		track := func(field string, oldValue, newValue interface{}) {
			history = append(history, models.ItemHistory{
				ItemID:    item.ID,
				Field:     field,
				OldValue:  historyValue(oldValue),
				NewValue:  historyValue(newValue),
				ChangedBy: actor,
			})
		}

		if req.Name != nil && *req.Name != item.Name {
			track("name", item.Name, *req.Name)
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Unit != nil && *req.Unit != item.Unit {
			track("unit", item.Unit, *req.Unit)
			updates["unit"] = *req.Unit
		}
		if req.UnitCost != nil && !req.UnitCost.Equal(item.UnitCost) {
			if req.UnitCost.IsNegative() {
				return &ValidationError{Field: "unitCost", Message: "must not be negative"}
			}
			track("unit_cost", item.UnitCost, *req.UnitCost)
			updates["unit_cost"] = *req.UnitCost
		}
		if req.ReorderQuantity != nil && !req.ReorderQuantity.Equal(item.ReorderQuantity) {
			if req.ReorderQuantity.IsNegative() {
				return &ValidationError{Field: "reorderQuantity", Message: "must not be negative"}
			}
			track("reorder_quantity", item.ReorderQuantity, *req.ReorderQuantity)
			updates["reorder_quantity"] = *req.ReorderQuantity
		}
		if req.ReorderLevel != nil && !req.ReorderLevel.Equal(item.ReorderLevel) {
			if req.ReorderLevel.IsNegative() {
				return &ValidationError{Field: "reorderLevel", Message: "must not be negative"}
			}
			track("reorder_level", item.ReorderLevel, *req.ReorderLevel)
			updates["reorder_level"] = *req.ReorderLevel

			// Threshold change can move the item in or out of LOW_STOCK
			item.ReorderLevel = *req.ReorderLevel
			item.RecomputeDerived()
			updates["status"] = item.Status
		}

		if err := tx.UpdateItem(ctx, id, updates); err != nil {
			return err
		}
		for i := range history {
			if err := tx.CreateItemHistory(ctx, &history[i]); err != nil {
				return err
			}
		}

		updated, err = tx.GetItemByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("item_id", id).Info("Inventory item updated")
	return updated, nil
}

// DeleteItem soft deletes an item. Ledger history is retained.
func (s *ItemCatalogService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("item_id", id).Info("Inventory item deleted")
	return nil
}

// GetItemHistory returns the change history of an item
func (s *ItemCatalogService) GetItemHistory(ctx context.Context, id uuid.UUID) ([]models.ItemHistory, error) {
	if _, err := s.repo.GetItemByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListItemHistory(ctx, id)
}
