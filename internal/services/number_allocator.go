package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/repository"
)

// NumberAllocator hands out human-readable document numbers of the form
// PREFIX-YEAR-NNNN. The sequence restarts at 1 each calendar year and the
// pad widens automatically past 9999.
type NumberAllocator struct {
	logger *logrus.Entry
}

func NewNumberAllocator(logger *logrus.Logger) *NumberAllocator {
	return &NumberAllocator{
		logger: logger.WithField("component", "number_allocator"),
	}
}

// Allocate returns the next document number for a prefix. The repository
// must be the transactional repository of the caller so the allocation
// commits or rolls back with the document it numbers.
//
// When the counter table cannot be used, allocation degrades to scanning
// existing numbers for the highest suffix. That path can hand out
// duplicates under concurrency; the unique index on the document number
// column is the final guard.
func (a *NumberAllocator) Allocate(ctx context.Context, repo repository.LedgerRepositoryInterface, prefix, scope string) (string, error) {
	year := time.Now().Year()

	value, err := repo.NextSequenceValue(ctx, scope, prefix, year)
	if err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"prefix": prefix,
			"scope":  scope,
		}).Warn("Sequence counter unavailable, falling back to number scan")

		max, scanErr := repo.MaxDocumentNumber(ctx, scope, prefix, year)
		if scanErr != nil {
			return "", fmt.Errorf("allocate %s number: %w", prefix, err)
		}
		value = max + 1
	}

	return FormatDocumentNumber(prefix, year, value), nil
}

// FormatDocumentNumber renders a document number. The sequence part is
// zero-padded to four digits and grows naturally beyond that.
func FormatDocumentNumber(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, value)
}
