package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/polkiloo/uniformorders/internal/adapter/notify"
	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/lifecycle"
	"github.com/polkiloo/uniformorders/internal/usecase"
)

// UniformFacade authorizes callers and runs lifecycle actions through a
// Controller bound to the caller's capabilities.
type UniformFacade struct {
	auth          *usecase.AuthUseCase
	orders        *usecase.OrderUseCase
	notifications *usecase.NotificationUseCase
	notifier      notify.Notifier
}

func NewUniformFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, notifications *usecase.NotificationUseCase, notifier notify.Notifier) *UniformFacade {
	return &UniformFacade{auth: auth, orders: orders, notifications: notifications, notifier: notifier}
}

func (f *UniformFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *UniformFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *UniformFacade) ParseToken(token string) (model.Principal, error) {
	return f.auth.ParseToken(token)
}

func (f *UniformFacade) CreateUser(ctx context.Context, actor model.Principal, login, password string, role model.Role) (*model.User, error) {
	return f.auth.CreateUser(ctx, actor, login, password, role)
}

func (f *UniformFacade) EnsureAdmin(ctx context.Context, login, password string) (*model.User, error) {
	return f.auth.EnsureAdmin(ctx, login, password)
}

func (f *UniformFacade) SubmitOrder(ctx context.Context, actor model.Principal, input model.Submission) (*model.Order, error) {
	return f.orders.Submit(ctx, actor.UserID, input)
}

// Orders returns the orders of userID. Students only see their own.
func (f *UniformFacade) Orders(ctx context.Context, actor model.Principal, userID int64) ([]model.Order, error) {
	if !actor.Role.Staff() && actor.UserID != userID {
		return nil, forbidden("view orders of other students")
	}
	return f.orders.FetchOrdersForUser(ctx, userID)
}

func (f *UniformFacade) ListOrders(ctx context.Context, actor model.Principal, status *model.OrderStatus, limit int) ([]model.Order, error) {
	if !actor.Role.Staff() {
		return nil, forbidden("list all orders")
	}
	return f.orders.List(ctx, status, limit)
}

func (f *UniformFacade) Order(ctx context.Context, actor model.Principal, id string) (*model.Order, error) {
	order, err := f.orders.FetchOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Staff() && order.UserID != actor.UserID {
		// Other students' orders look missing, not forbidden.
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// ChangeOrder validates every part of change against the stored order and the
// caller's capabilities, then stores it in one update. A refused part leaves
// the order untouched.
func (f *UniformFacade) ChangeOrder(ctx context.Context, actor model.Principal, id string, change model.OrderChange) (*model.Order, error) {
	if change.Empty() {
		return nil, domainErrors.NewValidationError("no changes requested")
	}
	controller, err := f.controller(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	current := controller.Order()
	if change.ExpectedStatus != "" && change.ExpectedStatus != current.Status {
		return nil, &domainErrors.ConflictError{
			Message: fmt.Sprintf("The order was changed by someone else and is now %s.", current.Status),
			Current: current,
		}
	}

	order, err := controller.Apply(ctx, change)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// RejectOrder rejects the order. An order that is already final is reported
// as a conflict carrying the stored snapshot.
func (f *UniformFacade) RejectOrder(ctx context.Context, actor model.Principal, id, reason string) (*model.Order, error) {
	controller, err := f.controller(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	current := controller.Order()
	if current.Status.Terminal() && strings.TrimSpace(reason) != "" {
		return nil, &domainErrors.ConflictError{
			Message: fmt.Sprintf("The order is already %s.", current.Status),
			Current: current,
		}
	}

	order, err := controller.Reject(ctx, reason)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (f *UniformFacade) DeleteOrder(ctx context.Context, actor model.Principal, id string) error {
	if actor.Role != model.RoleSuperAdmin {
		return forbidden("delete orders")
	}
	return f.orders.Delete(ctx, id)
}

func (f *UniformFacade) PendingNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	return f.notifications.SelectBatchForDispatch(ctx, limit)
}

func (f *UniformFacade) Deliver(ctx context.Context, n model.Notification) error {
	return f.notifier.Notify(ctx, n)
}

func (f *UniformFacade) MarkNotified(ctx context.Context, id int64) error {
	return f.notifications.MarkDispatched(ctx, id)
}

func (f *UniformFacade) controller(ctx context.Context, actor model.Principal, id string) (*lifecycle.Controller, error) {
	if !actor.Role.Staff() {
		return nil, forbidden("manage orders")
	}
	order, err := f.orders.FetchOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return lifecycle.NewController(*order, f.orders, actor.Capabilities()), nil
}

func forbidden(action string) error {
	return fmt.Errorf("%w: role may not %s", domainErrors.ErrForbidden, action)
}
