package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// AlertManager raises low stock and out of stock alerts. At most one
// unresolved alert exists per item; further shortfalls are suppressed
// until the open alert is resolved.
type AlertManager struct {
	logger *logrus.Entry
}

func NewAlertManager(logger *logrus.Logger) *AlertManager {
	return &AlertManager{
		logger: logger.WithField("component", "alert_manager"),
	}
}

// CheckAndCreate inspects an item after a stock movement and raises an
// alert when the on-hand quantity is at or below the reorder level. The
// repository must be the caller's transactional repository so the alert
// commits with the movement that triggered it. The bool reports whether
// an alert was actually created.
func (m *AlertManager) CheckAndCreate(ctx context.Context, repo repository.LedgerRepositoryInterface, item *models.InventoryItem) (bool, error) {
	if item.QuantityOnHand.GreaterThan(item.ReorderLevel) {
		return false, nil
	}

	existing, err := repo.GetUnresolvedAlertForItem(ctx, item.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if existing != nil {
		m.logger.WithFields(logrus.Fields{
			"item_id":  item.ID,
			"alert_id": existing.ID,
		}).Debug("Unresolved alert already open, skipping")
		return false, nil
	}

	alertType := models.AlertTypeLowStock
	severity := models.AlertSeverityWarning
	message := fmt.Sprintf("Stock for %s (%s) is %s, at or below reorder level %s",
		item.Name, item.Code, item.QuantityOnHand, item.ReorderLevel)
	if item.QuantityOnHand.IsZero() {
		alertType = models.AlertTypeOutOfStock
		severity = models.AlertSeverityCritical
		message = fmt.Sprintf("%s (%s) is out of stock", item.Name, item.Code)
	}

	alert := &models.StockAlert{
		ItemID:            item.ID,
		AlertType:         alertType,
		Severity:          severity,
		Message:           message,
		CurrentQuantity:   item.QuantityOnHand,
		ThresholdQuantity: item.ReorderLevel,
	}
	if err := repo.CreateAlert(ctx, alert); err != nil {
		return false, err
	}

	m.logger.WithFields(logrus.Fields{
		"item_id":    item.ID,
		"alert_type": alertType,
		"quantity":   item.QuantityOnHand,
	}).Info("Stock alert created")
	return true, nil
}
