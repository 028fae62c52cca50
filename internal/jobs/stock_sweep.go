// Package jobs contains scheduled background work.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
	"stock-ledger-service/internal/services"
)

// StockSweep periodically reconciles alerts with actual stock levels. It
// raises alerts for items that slipped below their reorder level without
// one (for example after a threshold edit) and resolves open alerts for
// items that have been restocked.
type StockSweep struct {
	repo   repository.LedgerRepositoryInterface
	alerts *services.AlertManager
	cron   *cron.Cron
	logger *logrus.Entry
}

func NewStockSweep(repo repository.LedgerRepositoryInterface, alerts *services.AlertManager, logger *logrus.Logger) *StockSweep {
	return &StockSweep{
		repo:   repo,
		alerts: alerts,
		cron:   cron.New(),
		logger: logger.WithField("component", "stock_sweep"),
	}
}

// Start schedules the sweep. The schedule is a standard 5-field cron
// expression.
func (s *StockSweep) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("Stock sweep scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *StockSweep) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run executes one sweep pass
func (s *StockSweep) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	raised := s.raiseMissingAlerts(ctx)
	resolved := s.resolveStaleAlerts(ctx)

	s.logger.WithFields(logrus.Fields{
		"raised":   raised,
		"resolved": resolved,
	}).Info("Stock sweep completed")
}

// raiseMissingAlerts walks items currently below threshold and makes sure
// each has an open alert
func (s *StockSweep) raiseMissingAlerts(ctx context.Context) int {
	raised := 0
	for _, status := range []models.ItemStatus{models.ItemStatusLowStock, models.ItemStatusOutOfStock} {
		status := status
		page := 1
		for {
			items, _, err := s.repo.ListItems(ctx, &status, "", page, 100)
			if err != nil {
				s.logger.WithError(err).Warn("Stock sweep item listing failed")
				return raised
			}
			if len(items) == 0 {
				break
			}

			for i := range items {
				item := items[i]
				var created bool
				err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
					var txErr error
					created, txErr = s.alerts.CheckAndCreate(ctx, tx, &item)
					return txErr
				})
				if err != nil {
					s.logger.WithError(err).WithField("item_id", item.ID).
						Warn("Stock sweep alert check failed")
					continue
				}
				if created {
					raised++
				}
			}
			page++
		}
	}
	return raised
}

// resolveStaleAlerts closes open alerts whose item has been restocked
// above its reorder level. Candidates are collected across the full scan
// before any alert is resolved; resolving mid-scan would shrink the
// unresolved result set and shift later pages past unvisited alerts.
func (s *StockSweep) resolveStaleAlerts(ctx context.Context) int {
	unresolved := false
	var stale []uuid.UUID
	page := 1
	for {
		alerts, _, err := s.repo.ListAlerts(ctx, &unresolved, nil, page, 100)
		if err != nil {
			s.logger.WithError(err).Warn("Stock sweep alert listing failed")
			return 0
		}
		if len(alerts) == 0 {
			break
		}

		for _, alert := range alerts {
			item, err := s.repo.GetItemByID(ctx, alert.ItemID)
			if err != nil {
				continue
			}
			if item.QuantityOnHand.GreaterThan(item.ReorderLevel) {
				stale = append(stale, alert.ID)
			}
		}
		page++
	}

	resolved := 0
	for _, alertID := range stale {
		if err := s.repo.ResolveAlert(ctx, alertID); err != nil {
			s.logger.WithError(err).WithField("alert_id", alertID).
				Warn("Stock sweep alert resolution failed")
			continue
		}
		resolved++
	}
	return resolved
}
