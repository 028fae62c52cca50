package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
)

// ExpensePoster posts an approved purchase order to an external accounting
// system. The workflow treats posting as best effort.
type ExpensePoster interface {
	PostExpense(ctx context.Context, po *models.PurchaseOrder) error
}

// PurchaseOrderService drives the purchase order lifecycle from draft
// through receiving. All state changes lock the order header row so
// concurrent operations on the same order serialize.
type PurchaseOrderService struct {
	repo     repository.LedgerRepositoryInterface
	ledger   *StockLedgerService
	numbers  *NumberAllocator
	expenses ExpensePoster
	logger   *logrus.Entry
}

func NewPurchaseOrderService(
	repo repository.LedgerRepositoryInterface,
	ledger *StockLedgerService,
	numbers *NumberAllocator,
	expenses ExpensePoster,
	logger *logrus.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		repo:     repo,
		ledger:   ledger,
		numbers:  numbers,
		expenses: expenses,
		logger:   logger.WithField("component", "purchase_orders"),
	}
}

func validatePOLine(itemID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if itemID == uuid.Nil {
		return &ValidationError{Field: "itemId", Message: "is required"}
	}
	if !quantity.IsPositive() {
		return &ValidationError{Field: "quantityOrdered", Message: "must be positive"}
	}
	if unitCost.IsNegative() {
		return &ValidationError{Field: "unitCost", Message: "must not be negative"}
	}
	return nil
}

// Create builds a draft purchase order with at least one line. Every line
// item must exist in the catalog.
func (s *PurchaseOrderService) Create(ctx context.Context, req models.CreatePurchaseOrderRequest, actor string) (*models.PurchaseOrder, error) {
	if len(req.Lines) == 0 {
		return nil, &ValidationError{Field: "lines", Message: "at least one line is required"}
	}
	if req.Tax.IsNegative() || req.Shipping.IsNegative() {
		return nil, &ValidationError{Field: "tax", Message: "tax and shipping must not be negative"}
	}

	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		lines := make([]models.PurchaseOrderLine, 0, len(req.Lines))
		subtotal := decimal.Zero
		for _, lineReq := range req.Lines {
			if err := validatePOLine(lineReq.ItemID, lineReq.QuantityOrdered, lineReq.UnitCost); err != nil {
				return err
			}
			if _, err := tx.GetItemByID(ctx, lineReq.ItemID); err != nil {
				return fmt.Errorf("item %s: %w", lineReq.ItemID, err)
			}

			lineTotal := lineReq.QuantityOrdered.Mul(lineReq.UnitCost)
			subtotal = subtotal.Add(lineTotal)
			lines = append(lines, models.PurchaseOrderLine{
				ItemID:               lineReq.ItemID,
				QuantityOrdered:      lineReq.QuantityOrdered,
				QuantityReceived:     decimal.Zero,
				UnitCost:             lineReq.UnitCost,
				LineTotal:            lineTotal,
				ExpectedDeliveryDate: lineReq.ExpectedDeliveryDate,
			})
		}

		number, err := s.numbers.Allocate(ctx, tx, "PO", models.SequenceScopePurchaseOrders)
		if err != nil {
			return err
		}

		po = &models.PurchaseOrder{
			PONumber:             number,
			SupplierID:           req.SupplierID,
			Status:               models.POStatusDraft,
			OrderDate:            time.Now(),
			ExpectedDeliveryDate: req.ExpectedDeliveryDate,
			Subtotal:             subtotal,
			Tax:                  req.Tax,
			Shipping:             req.Shipping,
			Total:                subtotal.Add(req.Tax).Add(req.Shipping),
			Notes:                req.Notes,
			CreatedBy:            &actor,
			Lines:                lines,
		}
		return tx.CreatePurchaseOrder(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"po_id":     po.ID,
		"po_number": po.PONumber,
		"lines":     len(po.Lines),
		"total":     po.Total,
	}).Info("Purchase order created")
	return po, nil
}

// Get retrieves a purchase order with its lines
func (s *PurchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	return s.repo.GetPurchaseOrderByID(ctx, id)
}

// List retrieves purchase orders with optional filtering
func (s *PurchaseOrderService) List(ctx context.Context, status *models.PurchaseOrderStatus, supplierID *uuid.UUID, page, limit int) ([]models.PurchaseOrder, int64, error) {
	return s.repo.ListPurchaseOrders(ctx, status, supplierID, page, limit)
}

// transition moves an order to a new status under the header lock.
// extraUpdates may add columns to the same write.
func (s *PurchaseOrderService) transition(ctx context.Context, id uuid.UUID, to models.PurchaseOrderStatus, extraUpdates map[string]interface{}) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		locked, err := tx.GetPurchaseOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !models.CanTransitionPO(locked.Status, to) {
			return &InvalidStateError{
				PurchaseOrderID: id,
				Status:          locked.Status,
				Message:         fmt.Sprintf("cannot transition purchase order %s from %s to %s", locked.PONumber, locked.Status, to),
			}
		}

		updates := map[string]interface{}{"status": to}
		for k, v := range extraUpdates {
			updates[k] = v
		}
		if err := tx.UpdatePurchaseOrder(ctx, id, updates); err != nil {
			return err
		}

		po, err = tx.GetPurchaseOrderByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"po_id":     po.ID,
		"po_number": po.PONumber,
		"status":    po.Status,
	}).Info("Purchase order status changed")
	return po, nil
}

// SubmitForApproval moves a draft order into the approval queue
func (s *PurchaseOrderService) SubmitForApproval(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	return s.transition(ctx, id, models.POStatusPendingApproval, nil)
}

// Approve marks an order approved and posts it to accounting when an
// expense poster is configured. Draft orders may be approved directly.
func (s *PurchaseOrderService) Approve(ctx context.Context, id uuid.UUID, actor string) (*models.PurchaseOrder, error) {
	now := time.Now()
	po, err := s.transition(ctx, id, models.POStatusApproved, map[string]interface{}{
		"approved_by": actor,
		"approved_at": now,
	})
	if err != nil {
		return nil, err
	}

	if s.expenses != nil {
		if postErr := s.expenses.PostExpense(ctx, po); postErr != nil {
			s.logger.WithError(postErr).WithField("po_id", po.ID).
				Warn("Expense posting failed, order remains approved")
		}
	}
	return po, nil
}

// Send marks an approved order as sent to the supplier and places the
// ordered quantities on order against each item.
func (s *PurchaseOrderService) Send(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		locked, err := tx.GetPurchaseOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked.Status != models.POStatusApproved {
			return &InvalidStateError{
				PurchaseOrderID: id,
				Status:          locked.Status,
				Message:         fmt.Sprintf("purchase order %s must be approved before sending, current status is %s", locked.PONumber, locked.Status),
			}
		}

		for i := range locked.Lines {
			line := &locked.Lines[i]
			if err := s.adjustOnOrder(ctx, tx, line.ItemID, line.QuantityOrdered); err != nil {
				return err
			}
		}

		if err := tx.UpdatePurchaseOrder(ctx, id, map[string]interface{}{"status": models.POStatusSent}); err != nil {
			return err
		}
		po, err = tx.GetPurchaseOrderByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"po_id":     po.ID,
		"po_number": po.PONumber,
	}).Info("Purchase order sent to supplier")
	return po, nil
}

// adjustOnOrder applies a delta to an item's on-order quantity under its
// row lock, flooring at zero
func (s *PurchaseOrderService) adjustOnOrder(ctx context.Context, tx repository.LedgerRepositoryInterface, itemID uuid.UUID, delta decimal.Decimal) error {
	item, err := tx.GetItemForUpdate(ctx, itemID)
	if err != nil {
		return err
	}
	onOrder := item.QuantityOnOrder.Add(delta)
	if onOrder.IsNegative() {
		onOrder = decimal.Zero
	}
	item.QuantityOnOrder = onOrder
	item.RecomputeDerived()
	return tx.ApplyItemQuantities(ctx, item)
}

// AddLine appends a line to an editable order and recomputes its totals
func (s *PurchaseOrderService) AddLine(ctx context.Context, poID uuid.UUID, req models.CreatePOLineRequest) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		locked, err := tx.GetPurchaseOrderForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if !models.CanEditPOLines(locked.Status) {
			return &InvalidStateError{
				PurchaseOrderID: poID,
				Status:          locked.Status,
				Message:         fmt.Sprintf("purchase order %s lines are frozen in status %s", locked.PONumber, locked.Status),
			}
		}
		if err := validatePOLine(req.ItemID, req.QuantityOrdered, req.UnitCost); err != nil {
			return err
		}
		if _, err := tx.GetItemByID(ctx, req.ItemID); err != nil {
			return fmt.Errorf("item %s: %w", req.ItemID, err)
		}

		line := &models.PurchaseOrderLine{
			PurchaseOrderID:      poID,
			ItemID:               req.ItemID,
			QuantityOrdered:      req.QuantityOrdered,
			QuantityReceived:     decimal.Zero,
			UnitCost:             req.UnitCost,
			LineTotal:            req.QuantityOrdered.Mul(req.UnitCost),
			ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		}
		if err := tx.CreatePurchaseOrderLine(ctx, line); err != nil {
			return err
		}

		po, err = s.recomputeTotals(ctx, tx, locked)
		return err
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// UpdateLine edits quantity or cost on a line of an editable order
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, poID, lineID uuid.UUID, req models.UpdatePOLineRequest) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		locked, err := tx.GetPurchaseOrderForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if !models.CanEditPOLines(locked.Status) {
			return &InvalidStateError{
				PurchaseOrderID: poID,
				Status:          locked.Status,
				Message:         fmt.Sprintf("purchase order %s lines are frozen in status %s", locked.PONumber, locked.Status),
			}
		}

		line := findLine(locked, lineID)
		if line == nil {
			return fmt.Errorf("purchase order line %s: %w", lineID, repository.ErrNotFound)
		}

		if req.QuantityOrdered != nil {
			if !req.QuantityOrdered.IsPositive() {
				return &ValidationError{Field: "quantityOrdered", Message: "must be positive"}
			}
			line.QuantityOrdered = *req.QuantityOrdered
		}
		if req.UnitCost != nil {
			if req.UnitCost.IsNegative() {
				return &ValidationError{Field: "unitCost", Message: "must not be negative"}
			}
			line.UnitCost = *req.UnitCost
		}
		if req.ExpectedDeliveryDate != nil {
			line.ExpectedDeliveryDate = req.ExpectedDeliveryDate
		}
		line.LineTotal = line.QuantityOrdered.Mul(line.UnitCost)

		if err := tx.UpdatePurchaseOrderLine(ctx, line); err != nil {
			return err
		}

		po, err = s.recomputeTotals(ctx, tx, locked)
		return err
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// DeleteLine removes a line from an editable order. The last line cannot
// be removed; cancel the order instead.
func (s *PurchaseOrderService) DeleteLine(ctx context.Context, poID, lineID uuid.UUID) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		locked, err := tx.GetPurchaseOrderForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if !models.CanEditPOLines(locked.Status) {
			return &InvalidStateError{
				PurchaseOrderID: poID,
				Status:          locked.Status,
				Message:         fmt.Sprintf("purchase order %s lines are frozen in status %s", locked.PONumber, locked.Status),
			}
		}
		if findLine(locked, lineID) == nil {
			return fmt.Errorf("purchase order line %s: %w", lineID, repository.ErrNotFound)
		}
		if len(locked.Lines) == 1 {
			return &ValidationError{Field: "lines", Message: "a purchase order must keep at least one line"}
		}

		if err := tx.DeletePurchaseOrderLine(ctx, lineID); err != nil {
			return err
		}

		po, err = s.recomputeTotals(ctx, tx, locked)
		return err
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// recomputeTotals reloads the lines and rewrites the order money columns
func (s *PurchaseOrderService) recomputeTotals(ctx context.Context, tx repository.LedgerRepositoryInterface, po *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	fresh, err := tx.GetPurchaseOrderByID(ctx, po.ID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, line := range fresh.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	total := subtotal.Add(fresh.Tax).Add(fresh.Shipping)

	err = tx.UpdatePurchaseOrder(ctx, po.ID, map[string]interface{}{
		"subtotal": subtotal,
		"total":    total,
	})
	if err != nil {
		return nil, err
	}

	fresh.Subtotal = subtotal
	fresh.Total = total
	return fresh, nil
}

func findLine(po *models.PurchaseOrder, lineID uuid.UUID) *models.PurchaseOrderLine {
	for i := range po.Lines {
		if po.Lines[i].ID == lineID {
			return &po.Lines[i]
		}
	}
	return nil
}

// Receive records a delivery against a sent order. The request is
// validated in full before any stock moves: one over-receipt rejects the
// whole delivery.
func (s *PurchaseOrderService) Receive(ctx context.Context, poID uuid.UUID, req models.ReceivePurchaseOrderRequest, actor string) (*models.PurchaseOrder, error) {
	if len(req.Lines) == 0 {
		return nil, &ValidationError{Field: "lines", Message: "at least one line is required"}
	}

	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		locked, err := tx.GetPurchaseOrderForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if !models.CanReceivePO(locked.Status) {
			return &InvalidStateError{
				PurchaseOrderID: poID,
				Status:          locked.Status,
				Message:         fmt.Sprintf("cannot receive against purchase order %s in status %s", locked.PONumber, locked.Status),
			}
		}

		// Validation pass. Nothing is written until every requested
		// line passes.
		seen := make(map[uuid.UUID]bool, len(req.Lines))
		for _, in := range req.Lines {
			if seen[in.LineID] {
				return &ValidationError{Field: "lines", Message: fmt.Sprintf("line %s appears more than once", in.LineID)}
			}
			seen[in.LineID] = true

			line := findLine(locked, in.LineID)
			if line == nil {
				return fmt.Errorf("purchase order line %s: %w", in.LineID, repository.ErrNotFound)
			}
			if !in.Quantity.IsPositive() {
				return &ValidationError{Field: "quantity", Message: "must be positive"}
			}

			newTotal := line.QuantityReceived.Add(in.Quantity)
			if newTotal.GreaterThan(line.QuantityOrdered) {
				return &OverReceiptError{
					PurchaseOrderID: poID,
					LineID:          line.ID,
					ItemID:          line.ItemID,
					QuantityOrdered: line.QuantityOrdered,
					AlreadyReceived: line.QuantityReceived,
					Requested:       in.Quantity,
				}
			}
		}

		// Mutation pass
		now := time.Now()
		for _, in := range req.Lines {
			line := findLine(locked, in.LineID)
			line.QuantityReceived = line.QuantityReceived.Add(in.Quantity)
			line.ActualDeliveryDate = &now
			if err := tx.UpdatePurchaseOrderLine(ctx, line); err != nil {
				return err
			}
			if _, err := s.ledger.RecordReceiptTx(ctx, tx, line.ItemID, in.Quantity, line.UnitCost, poID, actor); err != nil {
				return err
			}
		}

		// Completion check over all lines, including ones not in this
		// delivery
		allFull := true
		for i := range locked.Lines {
			if !locked.Lines[i].IsFullyReceived() {
				allFull = false
				break
			}
		}

		updates := map[string]interface{}{}
		if allFull {
			updates["status"] = models.POStatusReceived
			updates["actual_delivery_date"] = now
		} else if locked.Status != models.POStatusPartiallyReceived {
			updates["status"] = models.POStatusPartiallyReceived
		}
		if len(updates) > 0 {
			if err := tx.UpdatePurchaseOrder(ctx, poID, updates); err != nil {
				return err
			}
		}

		po, err = tx.GetPurchaseOrderByID(ctx, poID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"po_id":     po.ID,
		"po_number": po.PONumber,
		"status":    po.Status,
		"lines":     len(req.Lines),
	}).Info("Purchase order delivery recorded")
	return po, nil
}

// Cancel aborts an order that has not been fully received. Quantities
// still on order are released from the affected items.
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, reason, actor string) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.repo.WithTransaction(ctx, func(tx repository.LedgerRepositoryInterface) error {
		locked, err := tx.GetPurchaseOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !models.CanTransitionPO(locked.Status, models.POStatusCancelled) {
			return &InvalidStateError{
				PurchaseOrderID: id,
				Status:          locked.Status,
				Message:         fmt.Sprintf("cannot cancel purchase order %s in status %s", locked.PONumber, locked.Status),
			}
		}

		// Release outstanding on-order quantities placed at send time
		if locked.Status == models.POStatusSent || locked.Status == models.POStatusPartiallyReceived {
			for i := range locked.Lines {
				line := &locked.Lines[i]
				remaining := line.RemainingQuantity()
				if remaining.IsZero() {
					continue
				}
				if err := s.adjustOnOrder(ctx, tx, line.ItemID, remaining.Neg()); err != nil {
					return err
				}
			}
		}

		notes := fmt.Sprintf("Cancelled by %s: %s", actor, reason)
		if locked.Notes != nil && *locked.Notes != "" {
			notes = *locked.Notes + "\n" + notes
		}

		updates := map[string]interface{}{
			"status": models.POStatusCancelled,
			"notes":  notes,
		}
		if err := tx.UpdatePurchaseOrder(ctx, id, updates); err != nil {
			return err
		}
		po, err = tx.GetPurchaseOrderByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"po_id":     po.ID,
		"po_number": po.PONumber,
		"reason":    reason,
	}).Info("Purchase order cancelled")
	return po, nil
}

// Close archives a fully received order
func (s *PurchaseOrderService) Close(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	return s.transition(ctx, id, models.POStatusClosed, nil)
}
