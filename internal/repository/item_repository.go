package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"stock-ledger-service/internal/models"
)

// generateItemCacheKey creates a cache key for item lookups
func generateItemCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("item:%s", id.String())
}

// invalidateItemCaches drops the item cache entry and all list caches
func (r *LedgerRepository) invalidateItemCaches(ctx context.Context, id uuid.UUID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, generateItemCacheKey(id))
	_ = r.cache.DeletePattern(ctx, "item:list:*")
}

// CreateItem creates a new inventory item
func (r *LedgerRepository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return translateError(err)
	}
	r.invalidateItemCaches(ctx, item.ID)
	return nil
}

// GetItemByID retrieves an item by ID, using the cache when possible
func (r *LedgerRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	cacheKey := generateItemCacheKey(id)

	if r.cache != nil {
		if data, err := r.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var item models.InventoryItem
			if err := json.Unmarshal(data, &item); err == nil {
				return &item, nil
			}
		}
	}

	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}

	if r.cache != nil {
		if data, err := json.Marshal(&item); err == nil {
			_ = r.cache.Set(ctx, cacheKey, data, ItemCacheTTL)
		}
	}

	return &item, nil
}

// GetItemByCode retrieves an item by its unique code
func (r *LedgerRepository) GetItemByCode(ctx context.Context, code string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "code = ?", code).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// GetItemForUpdate retrieves an item and takes a row lock on it. Must be
// called inside WithTransaction so the lock holds until commit.
func (r *LedgerRepository) GetItemForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// ApplyItemQuantities persists the quantity, status and restock fields of a
// locked item. Only the stock-movement columns are written so concurrent
// catalog edits are not clobbered.
func (r *LedgerRepository) ApplyItemQuantities(ctx context.Context, item *models.InventoryItem) error {
	updates := map[string]interface{}{
		"quantity_on_hand":   item.QuantityOnHand,
		"quantity_allocated": item.QuantityAllocated,
		"quantity_available": item.QuantityAvailable,
		"quantity_on_order":  item.QuantityOnOrder,
		"status":             item.Status,
		"last_restocked_at":  item.LastRestockedAt,
		"updated_at":         time.Now(),
	}
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", item.ID).
		Updates(updates).Error
	if err != nil {
		return translateError(err)
	}
	r.invalidateItemCaches(ctx, item.ID)
	return nil
}

// ListItems retrieves items with optional filtering and pagination
func (r *LedgerRepository) ListItems(ctx context.Context, status *models.ItemStatus, search string, page, limit int) ([]models.InventoryItem, int64, error) {
	var items []models.InventoryItem
	var total int64

	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	if err := query.Order("code ASC").Find(&items).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return items, total, nil
}

// UpdateItem applies a partial update to an item
func (r *LedgerRepository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateItemCaches(ctx, id)
	return nil
}

// DeleteItem soft deletes an item
func (r *LedgerRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateItemCaches(ctx, id)
	return nil
}

// CreateItemHistory records a field change on an item
func (r *LedgerRepository) CreateItemHistory(ctx context.Context, history *models.ItemHistory) error {
	history.CreatedAt = time.Now()
	return translateError(r.db.WithContext(ctx).Create(history).Error)
}

// ListItemHistory returns the change history of an item, newest first
func (r *LedgerRepository) ListItemHistory(ctx context.Context, itemID uuid.UUID) ([]models.ItemHistory, error) {
	var history []models.ItemHistory
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, translateError(err)
	}
	return history, nil
}
