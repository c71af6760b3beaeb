package lifecycle

import (
	"fmt"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// forward maps every non-terminal status to its single successor.
var forward = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPending:   model.OrderStatusApproved,
	model.OrderStatusApproved:  model.OrderStatusMeasured,
	model.OrderStatusMeasured:  model.OrderStatusForPickup,
	model.OrderStatusForPickup: model.OrderStatusClaimed,
}

// LegalNextStatuses returns the statuses an order in current may move to.
// The current status is always part of the result. It panics on an unknown
// status since that can only come from a programming error.
//
//	PENDING ──> APPROVED ──> MEASURED ──> FOR_PICKUP ──> CLAIMED
//	   │           │            │             │
//	   └───────────┴────────────┴─────────────┴──> REJECTED
func LegalNextStatuses(current model.OrderStatus) []model.OrderStatus {
	if !current.Valid() {
		panic(fmt.Sprintf("lifecycle: unknown order status %q", current))
	}
	if current.Terminal() {
		return []model.OrderStatus{current}
	}
	return []model.OrderStatus{current, forward[current], model.OrderStatusRejected}
}

// IsLegalTransition reports whether from may move to to.
func IsLegalTransition(from, to model.OrderStatus) bool {
	for _, s := range LegalNextStatuses(from) {
		if s == to {
			return true
		}
	}
	return false
}
