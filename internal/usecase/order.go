package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/domain/repository"
	"github.com/polkiloo/uniformorders/internal/lifecycle"
)

// OrderUseCase is the authoritative order collaborator. Every mutation is a
// compare-and-set on the stored status, so concurrent staff actions surface
// as ConflictError carrying the fresh snapshot.
type OrderUseCase struct {
	orders    repository.OrderRepository
	scheduler *MeasurementScheduler
	now       func() time.Time
	newID     func() string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, scheduler *MeasurementScheduler) *OrderUseCase {
	return &OrderUseCase{
		orders:    orders,
		scheduler: scheduler,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

var _ lifecycle.Collaborator = (*OrderUseCase)(nil)

// Submit stores a new pending order for the student.
func (u *OrderUseCase) Submit(ctx context.Context, userID int64, input model.Submission) (*model.Order, error) {
	now := u.now()
	if err := ValidateSubmission(input, now); err != nil {
		return nil, err
	}

	order := model.Order{
		ID:     u.newID(),
		UserID: userID,
		Status: model.OrderStatusPending,
		StudentInfo: model.StudentInfo{
			Name:          strings.TrimSpace(input.Student.Name),
			Email:         strings.TrimSpace(input.Student.Email),
			StudentNumber: strings.TrimSpace(input.Student.StudentNumber),
			Department:    input.Student.Department,
			Level:         input.Student.Level,
			Gender:        input.Student.Gender,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, r := range input.Receipts {
		order.Receipts = append(order.Receipts, model.Receipt{
			Type:     r.Type,
			ORNumber: strings.TrimSpace(r.ORNumber),
			Amount:   r.Amount.Round(2),
			DatePaid: calendarDate(r.DatePaid),
			Image:    r.Image,
		})
	}

	return u.orders.Create(ctx, order)
}

// FetchOrder returns the stored snapshot.
func (u *OrderUseCase) FetchOrder(ctx context.Context, id string) (*model.Order, error) {
	return u.orders.Get(ctx, id)
}

// FetchOrdersForUser returns every order of the user, newest first.
func (u *OrderUseCase) FetchOrdersForUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// List returns orders for staff dashboards, optionally filtered by status.
func (u *OrderUseCase) List(ctx context.Context, status *model.OrderStatus, limit int) ([]model.Order, error) {
	return u.orders.List(ctx, repository.OrderFilter{Status: status, Limit: limit})
}

// Delete removes an order permanently.
func (u *OrderUseCase) Delete(ctx context.Context, id string) error {
	return u.orders.Delete(ctx, id)
}

// UpdateOrder applies a partial change. Verifying the receipt of a pending
// order also approves it and assigns the measurement schedule.
func (u *OrderUseCase) UpdateOrder(ctx context.Context, id string, change model.OrderChange) (*model.Order, error) {
	if change.Empty() {
		return nil, domainErrors.NewValidationError("no changes requested")
	}

	current, err := u.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if change.ExpectedStatus != "" && change.ExpectedStatus != current.Status {
		return nil, staleConflict(*current)
	}

	next := current.Clone()
	var events []model.Notification

	if change.VerifyReceipt != nil {
		receiptType := *change.VerifyReceipt
		if err := lifecycle.CheckVerify(next, receiptType); err != nil {
			return nil, err
		}
		var orNumber string
		for i := range next.Receipts {
			if next.Receipts[i].Type == receiptType {
				next.Receipts[i].IsVerified = true
				orNumber = next.Receipts[i].ORNumber
			}
		}
		approved := next.Status == model.OrderStatusPending
		if approved {
			next.Status = model.OrderStatusApproved
		}
		events = append(events, notification(next, model.NotificationReceiptVerified,
			fmt.Sprintf("Your payment receipt %s has been verified.", orNumber)))
		if approved {
			events = append(events, statusChanged(next))
		}
		if next.MeasurementSchedule == nil {
			schedule := u.scheduler.Next(u.now())
			next.MeasurementSchedule = &schedule
		}
	}

	if change.Status != nil {
		noop, err := lifecycle.CheckStatusChange(next, *change.Status)
		if err != nil {
			return nil, err
		}
		if !noop {
			next.Status = *change.Status
			events = append(events, statusChanged(next))
		}
	}

	if change.MeasurementSchedule != nil {
		if err := lifecycle.CheckSchedule(next, *change.MeasurementSchedule); err != nil {
			return nil, err
		}
		schedule := *change.MeasurementSchedule
		next.MeasurementSchedule = &schedule
	}

	if next.Equal(*current) {
		return current, nil
	}
	if err := next.Validate(); err != nil {
		return nil, domainErrors.NewValidationError(err.Error())
	}

	return u.store(ctx, next, current.Status, events)
}

// RejectOrder moves a non-terminal order to rejected with the given reason.
func (u *OrderUseCase) RejectOrder(ctx context.Context, id string, reason string) (*model.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainErrors.NewValidationError("rejection reason is required")
	}

	current, err := u.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, &domainErrors.ConflictError{
			Message: fmt.Sprintf("The order is already %s.", current.Status),
			Current: *current,
		}
	}

	next := current.Clone()
	next.Status = model.OrderStatusRejected
	next.RejectionReason = reason
	events := []model.Notification{notification(next, model.NotificationOrderRejected,
		fmt.Sprintf("Your uniform order was rejected: %s", reason))}

	return u.store(ctx, next, current.Status, events)
}

func (u *OrderUseCase) store(ctx context.Context, next model.Order, expected model.OrderStatus, events []model.Notification) (*model.Order, error) {
	updated, err := u.orders.Update(ctx, next, expected, events)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, domainErrors.ErrConflict) {
		return nil, err
	}

	fresh, ferr := u.orders.Get(ctx, next.ID)
	if ferr != nil {
		return nil, ferr
	}
	return nil, staleConflict(*fresh)
}

// calendarDate drops the clock so receipts match the stored DATE column.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func staleConflict(current model.Order) *domainErrors.ConflictError {
	return &domainErrors.ConflictError{
		Message: fmt.Sprintf("The order was changed by someone else and is now %s.", current.Status),
		Current: current,
	}
}

func statusChanged(order model.Order) model.Notification {
	return notification(order, model.NotificationStatusChanged,
		fmt.Sprintf("Your uniform order status is now %s.", order.Status))
}

func notification(order model.Order, kind model.NotificationKind, message string) model.Notification {
	return model.Notification{
		OrderID: order.ID,
		UserID:  order.UserID,
		Kind:    kind,
		Status:  order.Status,
		Message: message,
	}
}
