package lifecycle

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// RejectionWorkflow moves orders into the terminal rejected status.
type RejectionWorkflow struct {
	orders Updater
}

// NewRejectionWorkflow constructs RejectionWorkflow.
func NewRejectionWorkflow(orders Updater) RejectionWorkflow {
	return RejectionWorkflow{orders: orders}
}

// CheckReject validates reason and current status, returning the trimmed reason.
func CheckReject(order model.Order, reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", domainErrors.NewValidationError("rejection reason is required")
	}
	switch order.Status {
	case model.OrderStatusClaimed:
		return "", domainErrors.NewValidationError("cannot reject a claimed order")
	case model.OrderStatusRejected:
		return "", domainErrors.NewValidationError("order is already rejected")
	}
	return reason, nil
}

// Reject asks the collaborator to reject the order with reason.
func (w RejectionWorkflow) Reject(ctx context.Context, order model.Order, reason string) (model.Order, error) {
	reason, err := CheckReject(order, reason)
	if err != nil {
		return order, err
	}

	updated, err := w.orders.RejectOrder(ctx, order.ID, reason)
	if err != nil {
		return order, err
	}
	return updated.Clone(), nil
}
