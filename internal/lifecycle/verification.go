package lifecycle

import (
	"context"
	"fmt"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// VerificationGate marks receipts verified through the collaborator.
type VerificationGate struct {
	orders Updater
}

// NewVerificationGate constructs VerificationGate.
func NewVerificationGate(orders Updater) VerificationGate {
	return VerificationGate{orders: orders}
}

// CheckVerify reports why the receipt of the given type may not be verified.
func CheckVerify(order model.Order, receiptType model.ReceiptType) error {
	switch order.Status {
	case model.OrderStatusRejected:
		return domainErrors.NewValidationError("cannot verify a receipt of a rejected order")
	case model.OrderStatusClaimed:
		return domainErrors.NewValidationError("cannot verify a receipt of a claimed order")
	}

	receipt, ok := order.ReceiptByType(receiptType)
	if !ok {
		return domainErrors.NewValidationError(fmt.Sprintf("order has no %s receipt", receiptType))
	}
	if receipt.IsVerified {
		return domainErrors.NewValidationError(fmt.Sprintf("receipt %s is already verified", receipt.ORNumber))
	}
	return nil
}

// Verify requests verification of the receipt. The collaborator is expected
// to advance a pending order to approved and assign the measurement schedule
// in the same call; its snapshot is returned as is.
func (g VerificationGate) Verify(ctx context.Context, order model.Order, receiptType model.ReceiptType) (model.Order, error) {
	if err := CheckVerify(order, receiptType); err != nil {
		return order, err
	}

	t := receiptType
	updated, err := g.orders.UpdateOrder(ctx, order.ID, model.OrderChange{
		ExpectedStatus: order.Status,
		VerifyReceipt:  &t,
	})
	if err != nil {
		return order, err
	}
	return updated.Clone(), nil
}
