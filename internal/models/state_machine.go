package models

import "fmt"

// ValidPOTransitions defines the allowed purchase order status transitions.
// CANCELLED and CLOSED are terminal.
var ValidPOTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POStatusDraft: {
		POStatusPendingApproval,
		POStatusApproved,
		POStatusCancelled,
	},
	POStatusPendingApproval: {
		POStatusApproved,
		POStatusCancelled,
	},
	POStatusApproved: {
		POStatusSent,
		POStatusCancelled,
	},
	POStatusSent: {
		POStatusPartiallyReceived,
		POStatusReceived,
		POStatusCancelled,
	},
	POStatusPartiallyReceived: {
		POStatusReceived,
		POStatusCancelled,
	},
	POStatusReceived: {
		POStatusPartiallyReceived,
		POStatusClosed,
	},
	POStatusCancelled: {},
	POStatusClosed:    {},
}

// CanTransitionPO checks if a status transition is allowed
func CanTransitionPO(from, to PurchaseOrderStatus) bool {
	allowed, exists := ValidPOTransitions[from]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

// ValidatePOTransition returns an error describing why a transition is not
// allowed, or nil when it is
func ValidatePOTransition(from, to PurchaseOrderStatus) error {
	if from == to {
		return nil
	}
	if IsTerminalPOStatus(from) {
		return fmt.Errorf("purchase order is %s and can no longer change status", from)
	}
	if !CanTransitionPO(from, to) {
		return fmt.Errorf("cannot transition purchase order from %s to %s", from, to)
	}
	return nil
}

// IsTerminalPOStatus checks if a status is terminal
func IsTerminalPOStatus(status PurchaseOrderStatus) bool {
	allowed, exists := ValidPOTransitions[status]
	return exists && len(allowed) == 0
}

// CanEditPOLines reports whether lines may be added, updated, or removed.
// Once an order is approved its lines are frozen.
func CanEditPOLines(status PurchaseOrderStatus) bool {
	return status == POStatusDraft || status == POStatusPendingApproval
}

// CanReceivePO reports whether a delivery may be recorded against the
// order. RECEIVED orders enter the receive path too so that a surplus
// delivery is reported as an over-receipt rather than a status conflict;
// since every line is already full, any positive quantity is rejected
// there.
func CanReceivePO(status PurchaseOrderStatus) bool {
	return status == POStatusSent || status == POStatusPartiallyReceived || status == POStatusReceived
}
