package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock-ledger-service/internal/models"
)

// CreatePurchaseOrder creates a purchase order together with its lines
func (r *LedgerRepository) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	po.CreatedAt = time.Now()
	po.UpdatedAt = time.Now()
	return translateError(r.db.WithContext(ctx).Create(po).Error)
}

// GetPurchaseOrderByID retrieves a purchase order with its lines
func (r *LedgerRepository) GetPurchaseOrderByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &po, nil
}

// GetPurchaseOrderForUpdate retrieves a purchase order and locks its header
// row, serializing concurrent lifecycle operations on the same order. Must
// be called inside WithTransaction. Lines are loaded after the lock is
// held so they reflect the serialized state.
func (r *LedgerRepository) GetPurchaseOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}

	err = r.db.WithContext(ctx).
		Where("purchase_order_id = ?", id).
		Order("created_at ASC").
		Find(&po.Lines).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &po, nil
}

// ListPurchaseOrders retrieves purchase orders with optional filtering
func (r *LedgerRepository) ListPurchaseOrders(ctx context.Context, status *models.PurchaseOrderStatus, supplierID *uuid.UUID, page, limit int) ([]models.PurchaseOrder, int64, error) {
	var orders []models.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PurchaseOrder{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Preload("Lines").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return orders, total, nil
}

// UpdatePurchaseOrder applies a partial update to a purchase order header
func (r *LedgerRepository) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePurchaseOrderLine adds a line to an existing purchase order
func (r *LedgerRepository) CreatePurchaseOrderLine(ctx context.Context, line *models.PurchaseOrderLine) error {
	line.CreatedAt = time.Now()
	line.UpdatedAt = time.Now()
	return translateError(r.db.WithContext(ctx).Create(line).Error)
}

// UpdatePurchaseOrderLine persists the mutable fields of a line
func (r *LedgerRepository) UpdatePurchaseOrderLine(ctx context.Context, line *models.PurchaseOrderLine) error {
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderLine{}).
		Where("id = ?", line.ID).
		Updates(map[string]interface{}{
			"quantity_ordered":       line.QuantityOrdered,
			"quantity_received":      line.QuantityReceived,
			"unit_cost":              line.UnitCost,
			"line_total":             line.LineTotal,
			"expected_delivery_date": line.ExpectedDeliveryDate,
			"actual_delivery_date":   line.ActualDeliveryDate,
			"updated_at":             time.Now(),
		}).Error
	return translateError(err)
}

// DeletePurchaseOrderLine removes a line
func (r *LedgerRepository) DeletePurchaseOrderLine(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseOrderLine{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
