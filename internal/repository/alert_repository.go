package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stock-ledger-service/internal/models"
)

// CreateAlert creates a new stock alert
func (r *LedgerRepository) CreateAlert(ctx context.Context, alert *models.StockAlert) error {
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = time.Now()
	return translateError(r.db.WithContext(ctx).Create(alert).Error)
}

// GetAlertByID retrieves an alert by ID
func (r *LedgerRepository) GetAlertByID(ctx context.Context, id uuid.UUID) (*models.StockAlert, error) {
	var alert models.StockAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &alert, nil
}

// GetUnresolvedAlertForItem returns the open alert for an item, or
// ErrNotFound when the item has none. Used for deduplication before
// raising a new alert.
func (r *LedgerRepository) GetUnresolvedAlertForItem(ctx context.Context, itemID uuid.UUID) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND is_resolved = ?", itemID, false).
		Order("created_at DESC").
		First(&alert).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &alert, nil
}

// ListAlerts retrieves alerts with optional filtering, newest first
func (r *LedgerRepository) ListAlerts(ctx context.Context, isResolved *bool, alertType *models.AlertType, page, limit int) ([]models.StockAlert, int64, error) {
	var alerts []models.StockAlert
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StockAlert{})

	if isResolved != nil {
		query = query.Where("is_resolved = ?", *isResolved)
	}
	if alertType != nil {
		query = query.Where("alert_type = ?", *alertType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return alerts, total, nil
}

// AcknowledgeAlert marks an alert as seen by an operator
func (r *LedgerRepository) AcknowledgeAlert(ctx context.Context, id uuid.UUID, acknowledgedBy string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_acknowledged": true,
			"acknowledged_by": acknowledgedBy,
			"acknowledged_at": now,
			"updated_at":      now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveAlert closes an alert so a future shortfall raises a fresh one
func (r *LedgerRepository) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_resolved": true,
			"resolved_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
