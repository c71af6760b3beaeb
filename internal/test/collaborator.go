package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// DefaultSchedule is assigned by CollaboratorStub when a pending order is verified.
var DefaultSchedule = model.MeasurementSchedule{Date: "2025-06-10", Time: "09:00"}

// NewPendingOrder builds a freshly submitted student order.
func NewPendingOrder(id string) model.Order {
	created := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	return model.Order{
		ID:     id,
		UserID: 7,
		Status: model.OrderStatusPending,
		Receipts: []model.Receipt{{
			Type:     model.ReceiptTypeFullPayment,
			ORNumber: "OR-" + id,
			Amount:   decimal.RequireFromString("1250.00"),
			DatePaid: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Image:    "receipts/" + id + ".jpg",
		}},
		StudentInfo: model.StudentInfo{
			Name:          "Maria Santos",
			Email:         "maria@university.edu",
			StudentNumber: "2021-00123",
			Department:    "Engineering",
			Level:         "College",
			Gender:        "Female",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// NewOrderInStatus builds a consistent order snapshot in the given status.
func NewOrderInStatus(id string, status model.OrderStatus) model.Order {
	order := NewPendingOrder(id)
	if status == model.OrderStatusPending {
		return order
	}
	order.Status = status
	order.Receipts[0].IsVerified = true
	schedule := DefaultSchedule
	order.MeasurementSchedule = &schedule
	if status == model.OrderStatusRejected {
		order.RejectionReason = "Insufficient funds"
	}
	return order
}

// CollaboratorStub is an in-memory order source of truth that mimics the
// server: verification approves pending orders and assigns a schedule.
type CollaboratorStub struct {
	UpdateFn func(context.Context, string, model.OrderChange) (*model.Order, error)
	RejectFn func(context.Context, string, string) (*model.Order, error)
	FetchFn  func(context.Context, string) (*model.Order, error)

	mu          sync.Mutex
	orders      map[string]model.Order
	UpdateCalls []model.OrderChange
	RejectCalls []string
	FetchCalls  int
}

// NewCollaboratorStub seeds the stub with orders.
func NewCollaboratorStub(orders ...model.Order) *CollaboratorStub {
	s := &CollaboratorStub{orders: make(map[string]model.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o.Clone()
	}
	return s
}

// Calls returns the number of mutating calls received.
func (s *CollaboratorStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.UpdateCalls) + len(s.RejectCalls)
}

// Stored returns the stub's current copy of an order.
func (s *CollaboratorStub) Stored(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o.Clone(), ok
}

// Put overwrites an order, simulating another actor.
func (s *CollaboratorStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[string]model.Order)
	}
	s.orders[order.ID] = order.Clone()
}

// UpdateOrder applies the change the way the server would.
func (s *CollaboratorStub) UpdateOrder(ctx context.Context, id string, change model.OrderChange) (*model.Order, error) {
	s.mu.Lock()
	s.UpdateCalls = append(s.UpdateCalls, change)
	s.mu.Unlock()
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, change)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if change.ExpectedStatus != "" && change.ExpectedStatus != order.Status {
		return nil, &domainErrors.ConflictError{Message: "order status changed", Current: order.Clone()}
	}

	order = order.Clone()
	if change.VerifyReceipt != nil {
		for i := range order.Receipts {
			if order.Receipts[i].Type == *change.VerifyReceipt {
				order.Receipts[i].IsVerified = true
			}
		}
		if order.Status == model.OrderStatusPending {
			order.Status = model.OrderStatusApproved
		}
		if order.MeasurementSchedule == nil {
			schedule := DefaultSchedule
			order.MeasurementSchedule = &schedule
		}
	}
	if change.Status != nil {
		order.Status = *change.Status
	}
	if change.MeasurementSchedule != nil {
		schedule := *change.MeasurementSchedule
		order.MeasurementSchedule = &schedule
	}
	order.UpdatedAt = order.UpdatedAt.Add(time.Second)
	s.orders[id] = order

	result := order.Clone()
	return &result, nil
}

// RejectOrder rejects a non-terminal order.
func (s *CollaboratorStub) RejectOrder(ctx context.Context, id string, reason string) (*model.Order, error) {
	s.mu.Lock()
	s.RejectCalls = append(s.RejectCalls, reason)
	s.mu.Unlock()
	if s.RejectFn != nil {
		return s.RejectFn(ctx, id, reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status.Terminal() {
		return nil, &domainErrors.ConflictError{Message: "order is already " + string(order.Status), Current: order.Clone()}
	}
	order = order.Clone()
	order.Status = model.OrderStatusRejected
	order.RejectionReason = reason
	order.UpdatedAt = order.UpdatedAt.Add(time.Second)
	s.orders[id] = order

	result := order.Clone()
	return &result, nil
}

// FetchOrder returns the stored snapshot.
func (s *CollaboratorStub) FetchOrder(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	s.FetchCalls++
	s.mu.Unlock()
	if s.FetchFn != nil {
		return s.FetchFn(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	result := order.Clone()
	return &result, nil
}

// FetchOrdersForUser returns stored snapshots owned by user.
func (s *CollaboratorStub) FetchOrdersForUser(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FetchCalls++
	var result []model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			result = append(result, o.Clone())
		}
	}
	return result, nil
}
