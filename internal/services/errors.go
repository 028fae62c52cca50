package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stock-ledger-service/internal/models"
)

// Sentinel error kinds. Typed errors below report themselves as one of
// these through errors.Is so handlers can map them without knowing the
// concrete type.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
	ErrOverReceipt  = errors.New("over receipt")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidStateError reports an operation attempted against a purchase
// order whose current status does not allow it
type InvalidStateError struct {
	PurchaseOrderID uuid.UUID
	Status          models.PurchaseOrderStatus
	Message         string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// OverReceiptError reports a receipt that would exceed the ordered
// quantity on a line. No part of the delivery is recorded when this is
// returned.
type OverReceiptError struct {
	PurchaseOrderID uuid.UUID
	LineID          uuid.UUID
	ItemID          uuid.UUID
	QuantityOrdered decimal.Decimal
	AlreadyReceived decimal.Decimal
	Requested       decimal.Decimal
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf(
		"line %s: receiving %s would exceed ordered quantity %s (already received %s)",
		e.LineID, e.Requested, e.QuantityOrdered, e.AlreadyReceived,
	)
}

func (e *OverReceiptError) Is(target error) bool {
	return target == ErrOverReceipt
}
