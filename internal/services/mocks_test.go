package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// MockLedgerRepository is a mock implementation of LedgerRepositoryInterface
type MockLedgerRepository struct {
	mock.Mock
}

// Ensure MockLedgerRepository implements the interface
var _ repository.LedgerRepositoryInterface = (*MockLedgerRepository)(nil)

// WithTransaction executes fn against the mock itself so expectations set
// on the mock cover transactional calls too
func (m *MockLedgerRepository) WithTransaction(ctx context.Context, fn func(repository.LedgerRepositoryInterface) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

func (m *MockLedgerRepository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil && item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockLedgerRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockLedgerRepository) GetItemByCode(ctx context.Context, code string) (*models.InventoryItem, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockLedgerRepository) GetItemForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockLedgerRepository) ApplyItemQuantities(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListItems(ctx context.Context, status *models.ItemStatus, search string, page, limit int) ([]models.InventoryItem, int64, error) {
	args := m.Called(ctx, status, search, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.InventoryItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerRepository) CreateItemHistory(ctx context.Context, history *models.ItemHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListItemHistory(ctx context.Context, itemID uuid.UUID) ([]models.ItemHistory, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItemHistory), args.Error(1)
}

func (m *MockLedgerRepository) CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	args := m.Called(ctx, txn)
	if args.Error(0) == nil && txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockLedgerRepository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.InventoryTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryTransaction), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactions(ctx context.Context, itemID *uuid.UUID, txnType *models.TransactionType, page, limit int) ([]models.InventoryTransaction, int64, error) {
	args := m.Called(ctx, itemID, txnType, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.InventoryTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) CreateAlert(ctx context.Context, alert *models.StockAlert) error {
	args := m.Called(ctx, alert)
	if args.Error(0) == nil && alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockLedgerRepository) GetAlertByID(ctx context.Context, id uuid.UUID) (*models.StockAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockAlert), args.Error(1)
}

func (m *MockLedgerRepository) GetUnresolvedAlertForItem(ctx context.Context, itemID uuid.UUID) (*models.StockAlert, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockAlert), args.Error(1)
}

func (m *MockLedgerRepository) ListAlerts(ctx context.Context, isResolved *bool, alertType *models.AlertType, page, limit int) ([]models.StockAlert, int64, error) {
	args := m.Called(ctx, isResolved, alertType, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.StockAlert), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) AcknowledgeAlert(ctx context.Context, id uuid.UUID, acknowledgedBy string) error {
	args := m.Called(ctx, id, acknowledgedBy)
	return args.Error(0)
}

func (m *MockLedgerRepository) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerRepository) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	args := m.Called(ctx, po)
	if args.Error(0) == nil && po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockLedgerRepository) GetPurchaseOrderByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockLedgerRepository) GetPurchaseOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockLedgerRepository) ListPurchaseOrders(ctx context.Context, status *models.PurchaseOrderStatus, supplierID *uuid.UUID, page, limit int) ([]models.PurchaseOrder, int64, error) {
	args := m.Called(ctx, status, supplierID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.PurchaseOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockLedgerRepository) CreatePurchaseOrderLine(ctx context.Context, line *models.PurchaseOrderLine) error {
	args := m.Called(ctx, line)
	if args.Error(0) == nil && line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdatePurchaseOrderLine(ctx context.Context, line *models.PurchaseOrderLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeletePurchaseOrderLine(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerRepository) NextSequenceValue(ctx context.Context, scope, name string, year int) (int64, error) {
	args := m.Called(ctx, scope, name, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) MaxDocumentNumber(ctx context.Context, scope, prefix string, year int) (int64, error) {
	args := m.Called(ctx, scope, prefix, year)
	return args.Get(0).(int64), args.Error(1)
}
