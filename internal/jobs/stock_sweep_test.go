package jobs

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
	"stock-ledger-service/internal/services"
)

// sweepRepo is an in-memory repository backing the sweep tests. ListAlerts
// pages over the live unresolved set, so the pagination window shifts when
// alerts are resolved mid-scan, matching the database behavior.
type sweepRepo struct {
	repository.LedgerRepositoryInterface

	items  []models.InventoryItem
	alerts []models.StockAlert
}

func (r *sweepRepo) WithTransaction(ctx context.Context, fn func(repository.LedgerRepositoryInterface) error) error {
	return fn(r)
}

func (r *sweepRepo) ListItems(ctx context.Context, status *models.ItemStatus, search string, page, limit int) ([]models.InventoryItem, int64, error) {
	var matched []models.InventoryItem
	for _, item := range r.items {
		if status == nil || item.Status == *status {
			matched = append(matched, item)
		}
	}
	return pageOf(matched, page, limit), int64(len(matched)), nil
}

func (r *sweepRepo) GetItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			return &r.items[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *sweepRepo) GetUnresolvedAlertForItem(ctx context.Context, itemID uuid.UUID) (*models.StockAlert, error) {
	for i := range r.alerts {
		if r.alerts[i].ItemID == itemID && !r.alerts[i].IsResolved {
			return &r.alerts[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *sweepRepo) CreateAlert(ctx context.Context, alert *models.StockAlert) error {
	alert.ID = uuid.New()
	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *sweepRepo) ListAlerts(ctx context.Context, isResolved *bool, alertType *models.AlertType, page, limit int) ([]models.StockAlert, int64, error) {
	var matched []models.StockAlert
	for _, alert := range r.alerts {
		if isResolved != nil && alert.IsResolved != *isResolved {
			continue
		}
		if alertType != nil && alert.AlertType != *alertType {
			continue
		}
		matched = append(matched, alert)
	}
	return pageOf(matched, page, limit), int64(len(matched)), nil
}

func (r *sweepRepo) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	for i := range r.alerts {
		if r.alerts[i].ID == id {
			r.alerts[i].IsResolved = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func pageOf[T any](rows []T, page, limit int) []T {
	offset := (page - 1) * limit
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func newSweep(repo *sweepRepo) *StockSweep {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewStockSweep(repo, services.NewAlertManager(logger), logger)
}

func restockedItem() models.InventoryItem {
	item := models.InventoryItem{
		ID:             uuid.New(),
		Code:           "ITM-" + uuid.NewString()[:8],
		Name:           "Restocked item",
		QuantityOnHand: decimal.NewFromInt(50),
		ReorderLevel:   decimal.NewFromInt(10),
	}
	item.RecomputeDerived()
	return item
}

func lowStockItem() models.InventoryItem {
	item := models.InventoryItem{
		ID:             uuid.New(),
		Code:           "ITM-" + uuid.NewString()[:8],
		Name:           "Low stock item",
		QuantityOnHand: decimal.NewFromInt(2),
		ReorderLevel:   decimal.NewFromInt(10),
	}
	item.RecomputeDerived()
	return item
}

func TestSweepResolvesAllRestockedAlertsAcrossPages(t *testing.T) {
	repo := &sweepRepo{}
	item := restockedItem()
	repo.items = append(repo.items, item)

	// More open alerts than one page holds, so the scan spans several
	// pages of the shrinking unresolved set.
	for i := 0; i < 150; i++ {
		repo.alerts = append(repo.alerts, models.StockAlert{
			ID:              uuid.New(),
			ItemID:          item.ID,
			AlertType:       models.AlertTypeLowStock,
			Severity:        models.AlertSeverityWarning,
			CurrentQuantity: decimal.NewFromInt(2),
		})
	}

	sweep := newSweep(repo)
	resolved := sweep.resolveStaleAlerts(context.Background())

	assert.Equal(t, 150, resolved)
	for _, alert := range repo.alerts {
		assert.True(t, alert.IsResolved)
	}
}

func TestSweepLeavesAlertsForItemsStillBelowThreshold(t *testing.T) {
	repo := &sweepRepo{}
	restocked := restockedItem()
	low := lowStockItem()
	repo.items = append(repo.items, restocked, low)
	repo.alerts = append(repo.alerts,
		models.StockAlert{ID: uuid.New(), ItemID: restocked.ID, AlertType: models.AlertTypeLowStock},
		models.StockAlert{ID: uuid.New(), ItemID: low.ID, AlertType: models.AlertTypeLowStock},
	)

	sweep := newSweep(repo)
	resolved := sweep.resolveStaleAlerts(context.Background())

	assert.Equal(t, 1, resolved)
	assert.True(t, repo.alerts[0].IsResolved)
	assert.False(t, repo.alerts[1].IsResolved)
}

func TestSweepCountsOnlyNewlyRaisedAlerts(t *testing.T) {
	repo := &sweepRepo{}
	covered := lowStockItem()
	uncovered := lowStockItem()
	repo.items = append(repo.items, covered, uncovered)

	// covered already has an open alert, so only uncovered needs one
	repo.alerts = append(repo.alerts, models.StockAlert{
		ID:        uuid.New(),
		ItemID:    covered.ID,
		AlertType: models.AlertTypeLowStock,
	})

	sweep := newSweep(repo)
	raised := sweep.raiseMissingAlerts(context.Background())

	assert.Equal(t, 1, raised)
	assert.Len(t, repo.alerts, 2)
	assert.Equal(t, uncovered.ID, repo.alerts[1].ItemID)
}
