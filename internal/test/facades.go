package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	SubmitFn func(context.Context, model.Principal, model.Submission) (*model.Order, error)
	OrdersFn func(context.Context, model.Principal, int64) ([]model.Order, error)
	ListFn   func(context.Context, model.Principal, *model.OrderStatus, int) ([]model.Order, error)
	OrderFn  func(context.Context, model.Principal, string) (*model.Order, error)
	ChangeFn func(context.Context, model.Principal, string, model.OrderChange) (*model.Order, error)
	RejectFn func(context.Context, model.Principal, string, string) (*model.Order, error)
	DeleteFn func(context.Context, model.Principal, string) error
}

// SubmitOrder delegates to provided function or returns a pending order.
func (s OrderFacadeStub) SubmitOrder(ctx context.Context, actor model.Principal, input model.Submission) (*model.Order, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, actor, input)
	}
	order := NewPendingOrder("submitted")
	order.UserID = actor.UserID
	return &order, nil
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, actor model.Principal, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, actor, userID)
	}
	order := NewPendingOrder("1")
	order.UserID = userID
	return []model.Order{order}, nil
}

// ListOrders returns predefined staff listing.
func (s OrderFacadeStub) ListOrders(ctx context.Context, actor model.Principal, status *model.OrderStatus, limit int) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, actor, status, limit)
	}
	return []model.Order{NewPendingOrder("1")}, nil
}

// Order returns a pending order with the requested identifier.
func (s OrderFacadeStub) Order(ctx context.Context, actor model.Principal, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, actor, id)
	}
	order := NewPendingOrder(id)
	return &order, nil
}

// ChangeOrder executes configured change handler.
func (s OrderFacadeStub) ChangeOrder(ctx context.Context, actor model.Principal, id string, change model.OrderChange) (*model.Order, error) {
	if s.ChangeFn != nil {
		return s.ChangeFn(ctx, actor, id, change)
	}
	order := NewOrderInStatus(id, model.OrderStatusApproved)
	return &order, nil
}

// RejectOrder executes configured rejection handler.
func (s OrderFacadeStub) RejectOrder(ctx context.Context, actor model.Principal, id, reason string) (*model.Order, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, actor, id, reason)
	}
	order := NewPendingOrder(id)
	order.Status = model.OrderStatusRejected
	order.RejectionReason = reason
	return &order, nil
}

// DeleteOrder executes configured deletion handler.
func (s OrderFacadeStub) DeleteOrder(ctx context.Context, actor model.Principal, id string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, actor, id)
	}
	return nil
}

// WorkerFacadeStub mimics dispatcher interactions with the uniform facade.
type WorkerFacadeStub struct {
	Batches   [][]model.Notification
	PendingFn func(context.Context, int) ([]model.Notification, error)
	DeliverFn func(context.Context, model.Notification) error
	MarkFn    func(context.Context, int64) error
	Delivered []model.Notification
	Marked    []int64
	mu        sync.Mutex
	calls     int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// PendingNotifications returns batches from configured queue.
func (s *WorkerFacadeStub) PendingNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// Deliver records delivered notifications.
func (s *WorkerFacadeStub) Deliver(ctx context.Context, n model.Notification) error {
	if s.DeliverFn != nil {
		return s.DeliverFn(ctx, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delivered = append(s.Delivered, n)
	return nil
}

// MarkNotified records acknowledged notifications.
func (s *WorkerFacadeStub) MarkNotified(ctx context.Context, id int64) error {
	if s.MarkFn != nil {
		return s.MarkFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Marked = append(s.Marked, id)
	return nil
}

// NotifierStub records notifications passed to it.
type NotifierStub struct {
	NotifyFn func(context.Context, model.Notification) error
	mu       sync.Mutex
	Sent     []model.Notification
}

// Notify returns configured result or records the notification.
func (s *NotifierStub) Notify(ctx context.Context, n model.Notification) error {
	if s.NotifyFn != nil {
		return s.NotifyFn(ctx, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, n)
	return nil
}
