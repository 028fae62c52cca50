package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"stock-ledger-service/internal/models"
)

// NextSequenceValue atomically increments and returns the counter for a
// document family and year. The upsert makes first use of a new year safe
// under concurrency: whichever transaction commits first creates the row.
func (r *LedgerRepository) NextSequenceValue(ctx context.Context, scope, name string, year int) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (scope, name, year, value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (scope, name, year)
		DO UPDATE SET value = document_sequences.value + 1
		RETURNING value`,
		scope, name, year,
	).Scan(&value).Error
	if err != nil {
		return 0, translateError(err)
	}
	return value, nil
}

// MaxDocumentNumber scans existing document numbers matching PREFIX-YEAR-
// and returns the highest sequence suffix. This is the degraded fallback
// when the sequence counter is unavailable; unparseable numbers are
// skipped.
func (r *LedgerRepository) MaxDocumentNumber(ctx context.Context, scope, prefix string, year int) (int64, error) {
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)

	var numbers []string
	var err error
	switch scope {
	case models.SequenceScopePurchaseOrders:
		err = r.db.WithContext(ctx).
			Model(&models.PurchaseOrder{}).
			Where("po_number LIKE ?", pattern).
			Pluck("po_number", &numbers).Error
	case models.SequenceScopeInventoryTransactions:
		err = r.db.WithContext(ctx).
			Model(&models.InventoryTransaction{}).
			Where("transaction_number LIKE ?", pattern).
			Pluck("transaction_number", &numbers).Error
	default:
		return 0, fmt.Errorf("unknown sequence scope %q", scope)
	}
	if err != nil {
		return 0, translateError(err)
	}

	stem := fmt.Sprintf("%s-%d-", prefix, year)
	var max int64
	for _, number := range numbers {
		suffix := strings.TrimPrefix(number, stem)
		value, parseErr := strconv.ParseInt(suffix, 10, 64)
		if parseErr != nil {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max, nil
}
