// Package events provides NATS event publishing for stock-ledger-service
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/models"
)

// defaultOrg identifies this deployment on the shared event schema. The
// service is single-tenant so the value is fixed.
const defaultOrg = "default"

// StockEventPublisher handles publishing stock-related events to NATS
type StockEventPublisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewStockEventPublisher creates a new stock event publisher
func NewStockEventPublisher(natsURL string, logger *logrus.Logger) (*StockEventPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "stock-ledger-service-publisher"

	publisher, err := events.NewPublisher(config, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	// Ensure inventory stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := publisher.EnsureStream(ctx, events.StreamInventory, []string{"inventory.>"}); err != nil {
		log.WithError(err).Warn("Failed to ensure inventory stream exists")
	}

	return &StockEventPublisher{
		publisher: publisher,
		logger:    log.WithField("component", "stock-events"),
	}, nil
}

// stockUnits converts a decimal quantity to whole units for the wire schema
func stockUnits(quantity decimal.Decimal) int {
	return int(quantity.IntPart())
}

// PublishLowStockAlert publishes an inventory.low_stock event
func (p *StockEventPublisher) PublishLowStockAlert(ctx context.Context, item *models.InventoryItem) error {
	event := events.NewInventoryEvent(events.InventoryLowStock, defaultOrg)
	event.Items = []events.InventoryItem{
		{
			ProductID:    item.ID.String(),
			Name:         item.Name,
			SKU:          item.Code,
			CurrentStock: stockUnits(item.QuantityOnHand),
			ReorderPoint: stockUnits(item.ReorderLevel),
		},
	}
	event.AlertLevel = "warning"
	event.AlertMessage = fmt.Sprintf("Low stock alert: %s (%s) has %s units remaining (reorder level: %s)",
		item.Name, item.Code, item.QuantityOnHand, item.ReorderLevel)
	event.CalculateSummary()

	if err := p.publisher.PublishInventory(ctx, event); err != nil {
		p.logger.WithFields(logrus.Fields{
			"itemId": item.ID,
			"code":   item.Code,
		}).WithError(err).Error("Failed to publish inventory.low_stock event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"itemId":       item.ID,
		"code":         item.Code,
		"currentStock": item.QuantityOnHand,
		"reorderLevel": item.ReorderLevel,
	}).Info("Published inventory.low_stock event")
	return nil
}

// PublishOutOfStockAlert publishes an inventory.out_of_stock event
func (p *StockEventPublisher) PublishOutOfStockAlert(ctx context.Context, item *models.InventoryItem) error {
	event := events.NewInventoryEvent(events.InventoryOutOfStock, defaultOrg)
	event.Items = []events.InventoryItem{
		{
			ProductID:    item.ID.String(),
			Name:         item.Name,
			SKU:          item.Code,
			CurrentStock: 0,
		},
	}
	event.AlertLevel = "critical"
	event.AlertMessage = fmt.Sprintf("Out of stock: %s (%s) is now out of stock", item.Name, item.Code)
	event.CalculateSummary()

	if err := p.publisher.PublishInventory(ctx, event); err != nil {
		p.logger.WithFields(logrus.Fields{
			"itemId": item.ID,
			"code":   item.Code,
		}).WithError(err).Error("Failed to publish inventory.out_of_stock event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"itemId": item.ID,
		"code":   item.Code,
	}).Info("Published inventory.out_of_stock event")
	return nil
}

// PublishStockAdjusted publishes an inventory.adjusted event for any ledger
// posting that changed the on-hand quantity
func (p *StockEventPublisher) PublishStockAdjusted(ctx context.Context, item *models.InventoryItem, previous decimal.Decimal, reason, adjustedBy string) error {
	event := events.NewInventoryEvent(events.InventoryAdjusted, defaultOrg)
	event.Items = []events.InventoryItem{
		{
			ProductID:     item.ID.String(),
			Name:          item.Name,
			SKU:           item.Code,
			CurrentStock:  stockUnits(item.QuantityOnHand),
			PreviousStock: stockUnits(previous),
		},
	}
	event.AdjustmentReason = reason
	event.AdjustedBy = adjustedBy
	if item.QuantityOnHand.GreaterThan(previous) {
		event.AdjustmentType = "add"
	} else if item.QuantityOnHand.LessThan(previous) {
		event.AdjustmentType = "remove"
	} else {
		event.AdjustmentType = "set"
	}
	event.AlertLevel = "info"
	event.AlertMessage = fmt.Sprintf("Stock adjusted: %s (%s) changed from %s to %s",
		item.Name, item.Code, previous, item.QuantityOnHand)

	if err := p.publisher.PublishInventory(ctx, event); err != nil {
		p.logger.WithFields(logrus.Fields{
			"itemId": item.ID,
			"code":   item.Code,
		}).WithError(err).Error("Failed to publish inventory.adjusted event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"itemId":         item.ID,
		"code":           item.Code,
		"previousStock":  previous,
		"currentStock":   item.QuantityOnHand,
		"adjustmentType": event.AdjustmentType,
	}).Info("Published inventory.adjusted event")
	return nil
}

// IsConnected returns true if connected to NATS
func (p *StockEventPublisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the NATS connection
func (p *StockEventPublisher) Close() {
	p.publisher.Close()
}
