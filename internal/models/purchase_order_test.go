package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPurchaseOrderLineIsFullyReceived(t *testing.T) {
	line := PurchaseOrderLine{
		QuantityOrdered:  decimal.NewFromInt(10),
		QuantityReceived: decimal.NewFromInt(4),
	}
	assert.False(t, line.IsFullyReceived())

	line.QuantityReceived = decimal.NewFromInt(10)
	assert.True(t, line.IsFullyReceived())

	line.QuantityReceived = decimal.NewFromInt(12)
	assert.True(t, line.IsFullyReceived())
}

func TestPurchaseOrderLineRemainingQuantity(t *testing.T) {
	line := PurchaseOrderLine{
		QuantityOrdered:  decimal.NewFromInt(10),
		QuantityReceived: decimal.NewFromFloat(2.5),
	}
	assert.True(t, line.RemainingQuantity().Equal(decimal.NewFromFloat(7.5)))

	line.QuantityReceived = decimal.NewFromInt(12)
	assert.True(t, line.RemainingQuantity().IsZero(), "remaining never goes negative")
}
