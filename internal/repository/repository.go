package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock-ledger-service/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrContention is returned when a row lock could not be obtained or a
	// transaction was chosen as a deadlock or serialization victim. Callers
	// may retry the whole operation.
	ErrContention = errors.New("transaction contention")
)

// Cache TTL constants
const (
	ItemCacheTTL     = 5 * time.Minute
	ItemListCacheTTL = 2 * time.Minute
)

// LedgerRepositoryInterface defines the persistence operations used by the
// services. Implementations must keep WithTransaction composable: the
// repository passed to fn runs every call inside the same transaction.
type LedgerRepositoryInterface interface {
	WithTransaction(ctx context.Context, fn func(LedgerRepositoryInterface) error) error

	// Items
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	GetItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	GetItemByCode(ctx context.Context, code string) (*models.InventoryItem, error)
	GetItemForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	ApplyItemQuantities(ctx context.Context, item *models.InventoryItem) error
	ListItems(ctx context.Context, status *models.ItemStatus, search string, page, limit int) ([]models.InventoryItem, int64, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	CreateItemHistory(ctx context.Context, history *models.ItemHistory) error
	ListItemHistory(ctx context.Context, itemID uuid.UUID) ([]models.ItemHistory, error)

	// Ledger entries
	CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.InventoryTransaction, error)
	ListTransactions(ctx context.Context, itemID *uuid.UUID, txnType *models.TransactionType, page, limit int) ([]models.InventoryTransaction, int64, error)

	// Alerts
	CreateAlert(ctx context.Context, alert *models.StockAlert) error
	GetAlertByID(ctx context.Context, id uuid.UUID) (*models.StockAlert, error)
	GetUnresolvedAlertForItem(ctx context.Context, itemID uuid.UUID) (*models.StockAlert, error)
	ListAlerts(ctx context.Context, isResolved *bool, alertType *models.AlertType, page, limit int) ([]models.StockAlert, int64, error)
	AcknowledgeAlert(ctx context.Context, id uuid.UUID, acknowledgedBy string) error
	ResolveAlert(ctx context.Context, id uuid.UUID) error

	// Purchase orders
	CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error
	GetPurchaseOrderByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	GetPurchaseOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, status *models.PurchaseOrderStatus, supplierID *uuid.UUID, page, limit int) ([]models.PurchaseOrder, int64, error)
	UpdatePurchaseOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	CreatePurchaseOrderLine(ctx context.Context, line *models.PurchaseOrderLine) error
	UpdatePurchaseOrderLine(ctx context.Context, line *models.PurchaseOrderLine) error
	DeletePurchaseOrderLine(ctx context.Context, id uuid.UUID) error

	// Document sequences
	NextSequenceValue(ctx context.Context, scope, name string, year int) (int64, error)
	MaxDocumentNumber(ctx context.Context, scope, prefix string, year int) (int64, error)
}

type LedgerRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

var _ LedgerRepositoryInterface = (*LedgerRepository)(nil)

func NewLedgerRepository(db *gorm.DB, redisClient *redis.Client) *LedgerRepository {
	repo := &LedgerRepository{
		db:    db,
		redis: redisClient,
	}

	// Initialize CacheLayer with the existing Redis client
	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ItemCacheTTL,
			KeyPrefix:  "stockledger:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// WithTransaction runs fn inside a database transaction. The repository
// handed to fn shares the caches of the parent so invalidations survive
// the commit.
func (r *LedgerRepository) WithTransaction(ctx context.Context, fn func(LedgerRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &LedgerRepository{
			db:    tx,
			redis: r.redis,
			cache: r.cache,
		}
		return fn(txRepo)
	})
}

// RedisHealth returns the health status of the Redis connection
func (r *LedgerRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}

// CacheStats returns cache statistics
func (r *LedgerRepository) CacheStats() *cache.CacheStats {
	if r.cache == nil {
		return nil
	}
	stats := r.cache.Stats()
	return &stats
}

// translateError maps driver errors onto the repository error taxonomy.
// Lock timeouts (55P03), deadlock victims (40P01) and serialization
// failures (40001) all become ErrContention.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40P01", "40001":
			return fmt.Errorf("%w: %s", ErrContention, pgErr.Message)
		}
	}
	return err
}
