package lifecycle

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// CheckStatusChange validates a requested status change. It reports noop when
// next equals the current status, which callers treat as a cancel.
func CheckStatusChange(order model.Order, next model.OrderStatus) (noop bool, err error) {
	if !next.Valid() {
		return false, domainErrors.NewValidationError(fmt.Sprintf("unknown order status %q", next))
	}
	if next == order.Status {
		return true, nil
	}
	if next == model.OrderStatusRejected && !order.Status.Terminal() {
		return false, domainErrors.NewValidationError("rejection reason required: use reject instead of a status change")
	}
	if !IsLegalTransition(order.Status, next) {
		return false, domainErrors.NewValidationError(fmt.Sprintf("illegal transition from %s to %s", order.Status, next))
	}
	return false, nil
}

// CheckSchedule validates a manual measurement schedule assignment.
func CheckSchedule(order model.Order, schedule model.MeasurementSchedule) error {
	if err := schedule.Validate(); err != nil {
		return domainErrors.NewValidationError(err.Error())
	}
	if order.Status != model.OrderStatusApproved {
		return domainErrors.NewValidationError(fmt.Sprintf("measurement can only be scheduled for approved orders, order is %s", order.Status))
	}
	return nil
}

// CheckChange validates a combined change as one unit, applying its parts to
// a projection of order in the same sequence the collaborator does:
// verification, then status, then schedule. Each part is checked locally
// before the capability it needs. noop reports that nothing would change.
func CheckChange(order model.Order, change model.OrderChange, caps model.Capabilities) (noop bool, err error) {
	if change.Empty() {
		return false, domainErrors.NewValidationError("no changes requested")
	}
	projected := order.Clone()
	noop = true

	if change.VerifyReceipt != nil {
		if err := CheckVerify(projected, *change.VerifyReceipt); err != nil {
			return false, err
		}
		if !caps.CanVerify {
			return false, forbidden("verify receipts")
		}
		if projected.Status == model.OrderStatusPending {
			projected.Status = model.OrderStatusApproved
		}
		noop = false
	}

	if change.Status != nil {
		same, err := CheckStatusChange(projected, *change.Status)
		if err != nil {
			return false, err
		}
		if !same {
			if !caps.CanApprove {
				return false, forbidden("change order status")
			}
			projected.Status = *change.Status
			noop = false
		}
	}

	if change.MeasurementSchedule != nil {
		if err := CheckSchedule(projected, *change.MeasurementSchedule); err != nil {
			return false, err
		}
		if !caps.CanApprove {
			return false, forbidden("schedule measurements")
		}
		if projected.MeasurementSchedule == nil || *projected.MeasurementSchedule != *change.MeasurementSchedule {
			noop = false
		}
	}
	return noop, nil
}

// Controller is the per-order session used by staff and student views.
// It holds the last adopted snapshot and never serializes requests: when
// calls overlap, the last response to arrive wins.
type Controller struct {
	orders    Updater
	caps      model.Capabilities
	gate      VerificationGate
	rejection RejectionWorkflow

	mu    sync.RWMutex
	order model.Order
}

// NewController builds a controller for the given snapshot.
func NewController(order model.Order, orders Updater, caps model.Capabilities) *Controller {
	return &Controller{
		orders:    orders,
		caps:      caps,
		gate:      NewVerificationGate(orders),
		rejection: NewRejectionWorkflow(orders),
		order:     order.Clone(),
	}
}

// Order returns a copy of the currently held snapshot.
func (c *Controller) Order() model.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Clone()
}

// Capabilities returns the capability set the controller was built with.
func (c *Controller) Capabilities() model.Capabilities {
	return c.caps
}

// Adopt replaces the held snapshot wholesale, e.g. with the snapshot of a ConflictError.
func (c *Controller) Adopt(order model.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if order.ID != c.order.ID {
		return fmt.Errorf("adopt order %s: controller manages order %s", order.ID, c.order.ID)
	}
	c.order = order.Clone()
	return nil
}

// Refresh re-reads the order and adopts the result.
func (c *Controller) Refresh(ctx context.Context, fetcher Fetcher) (model.Order, error) {
	current := c.Order()
	fresh, err := fetcher.FetchOrder(ctx, current.ID)
	if err != nil {
		return current, err
	}
	return c.adopt(*fresh), nil
}

// ChangeStatus moves the order forward along the lifecycle.
func (c *Controller) ChangeStatus(ctx context.Context, next model.OrderStatus) (model.Order, error) {
	current := c.Order()

	noop, err := CheckStatusChange(current, next)
	if err != nil {
		return current, err
	}
	if noop {
		return current, nil
	}
	if !c.caps.CanApprove {
		return current, forbidden("change order status")
	}

	updated, err := c.orders.UpdateOrder(ctx, current.ID, model.OrderChange{
		ExpectedStatus: current.Status,
		Status:         &next,
	})
	if err != nil {
		return current, err
	}
	return c.adopt(*updated), nil
}

// VerifyReceipt verifies the primary receipt of the order.
func (c *Controller) VerifyReceipt(ctx context.Context) (model.Order, error) {
	current := c.Order()
	receipt, ok := current.PrimaryReceipt()
	if !ok {
		return current, domainErrors.NewValidationError("order has no receipt")
	}
	return c.verify(ctx, current, receipt.Type)
}

// VerifyPayment verifies the receipt of the given payment type.
func (c *Controller) VerifyPayment(ctx context.Context, receiptType model.ReceiptType) (model.Order, error) {
	return c.verify(ctx, c.Order(), receiptType)
}

func (c *Controller) verify(ctx context.Context, current model.Order, receiptType model.ReceiptType) (model.Order, error) {
	if err := CheckVerify(current, receiptType); err != nil {
		return current, err
	}
	if !c.caps.CanVerify {
		return current, forbidden("verify receipts")
	}

	updated, err := c.gate.Verify(ctx, current, receiptType)
	if err != nil {
		return current, err
	}
	return c.adopt(updated), nil
}

// Reject rejects the order with a mandatory reason.
func (c *Controller) Reject(ctx context.Context, reason string) (model.Order, error) {
	current := c.Order()
	if _, err := CheckReject(current, reason); err != nil {
		return current, err
	}
	if !c.caps.CanReject {
		return current, forbidden("reject orders")
	}

	updated, err := c.rejection.Reject(ctx, current, reason)
	if err != nil {
		return current, err
	}
	return c.adopt(updated), nil
}

// ScheduleMeasurement assigns a measurement slot to an approved order.
func (c *Controller) ScheduleMeasurement(ctx context.Context, schedule model.MeasurementSchedule) (model.Order, error) {
	current := c.Order()
	if err := CheckSchedule(current, schedule); err != nil {
		return current, err
	}
	if !c.caps.CanApprove {
		return current, forbidden("schedule measurements")
	}

	updated, err := c.orders.UpdateOrder(ctx, current.ID, model.OrderChange{
		ExpectedStatus:      current.Status,
		MeasurementSchedule: &schedule,
	})
	if err != nil {
		return current, err
	}
	return c.adopt(*updated), nil
}

// Apply sends a combined change in a single collaborator call once every part
// of it has passed CheckChange. Nothing is sent when any part is refused.
func (c *Controller) Apply(ctx context.Context, change model.OrderChange) (model.Order, error) {
	current := c.Order()
	noop, err := CheckChange(current, change, c.caps)
	if err != nil {
		return current, err
	}
	if noop {
		return current, nil
	}

	change.ExpectedStatus = current.Status
	updated, err := c.orders.UpdateOrder(ctx, current.ID, change)
	if err != nil {
		return current, err
	}
	return c.adopt(*updated), nil
}

func (c *Controller) adopt(order model.Order) model.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = order.Clone()
	return c.order.Clone()
}

func forbidden(action string) error {
	return fmt.Errorf("%w: role may not %s", domainErrors.ErrForbidden, action)
}
