package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderUpdateCall stores information about Update invocations.
type OrderUpdateCall struct {
	Order         model.Order
	Expected      model.OrderStatus
	Notifications []model.Notification
}

// OrderRepositoryStub keeps orders in memory and honours the status and
// version compare-and-set of Update. Fn fields override individual methods.
type OrderRepositoryStub struct {
	CreateFn func(context.Context, model.Order) (*model.Order, error)
	GetFn    func(context.Context, string) (*model.Order, error)
	UpdateFn func(context.Context, model.Order, model.OrderStatus, []model.Notification) (*model.Order, error)
	ListFn   func(context.Context, repository.OrderFilter) ([]model.Order, error)

	mu          sync.Mutex
	Orders      map[string]model.Order
	UpdateCalls []OrderUpdateCall
	Deleted     []string
}

// NewOrderRepositoryStub seeds the stub with orders.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{Orders: make(map[string]model.Order)}
	for _, o := range orders {
		s.Orders[o.ID] = o.Clone()
	}
	return s
}

// Create stores order unless an order with the same identifier exists.
func (s *OrderRepositoryStub) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]model.Order)
	}
	if _, exists := s.Orders[order.ID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	s.Orders[order.ID] = order.Clone()
	created := order.Clone()
	return &created, nil
}

// Get returns stored order or not found.
func (s *OrderRepositoryStub) Get(ctx context.Context, id string) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	result := order.Clone()
	return &result, nil
}

// ListByUser returns stored orders of the user sorted by creation time.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			result = append(result, o.Clone())
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// List returns stored orders matching filter.
func (s *OrderRepositoryStub) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.Orders {
		if filter.Status == nil || o.Status == *filter.Status {
			result = append(result, o.Clone())
		}
	}
	sortNewestFirst(result)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Update stores order when the persisted status equals expected.
func (s *OrderRepositoryStub) Update(ctx context.Context, order model.Order, expected model.OrderStatus, notifications []model.Notification) (*model.Order, error) {
	s.mu.Lock()
	s.UpdateCalls = append(s.UpdateCalls, OrderUpdateCall{Order: order.Clone(), Expected: expected, Notifications: notifications})
	s.mu.Unlock()
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, order, expected, notifications)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Orders[order.ID]
	if !ok || stored.Status != expected || stored.Version != order.Version {
		return nil, domainErrors.ErrConflict
	}
	updated := order.Clone()
	for i := range updated.Receipts {
		if prev, found := stored.ReceiptByType(updated.Receipts[i].Type); found && prev.IsVerified {
			updated.Receipts[i].IsVerified = true
		}
	}
	updated.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	updated.Version = stored.Version + 1
	s.Orders[order.ID] = updated
	result := updated.Clone()
	return &result, nil
}

// Delete removes stored order.
func (s *OrderRepositoryStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Orders[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Orders, id)
	s.Deleted = append(s.Deleted, id)
	return nil
}

// Put overwrites an order, simulating another writer.
func (s *OrderRepositoryStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[string]model.Order)
	}
	stored := order.Clone()
	if prev, ok := s.Orders[order.ID]; ok && stored.Version <= prev.Version {
		stored.Version = prev.Version + 1
	}
	s.Orders[order.ID] = stored
}

func sortNewestFirst(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// NotificationRepositoryStub serves configured outbox batches.
type NotificationRepositoryStub struct {
	SelectFn func(context.Context, int) ([]model.Notification, error)
	MarkFn   func(context.Context, int64) error
	Pending  []model.Notification
	Marked   []int64
}

// SelectBatchForDispatch returns configured notifications.
func (s *NotificationRepositoryStub) SelectBatchForDispatch(ctx context.Context, limit int) ([]model.Notification, error) {
	if s.SelectFn != nil {
		return s.SelectFn(ctx, limit)
	}
	if len(s.Pending) > limit {
		return s.Pending[:limit], nil
	}
	return s.Pending, nil
}

// MarkDispatched records dispatched identifiers.
func (s *NotificationRepositoryStub) MarkDispatched(ctx context.Context, id int64) error {
	if s.MarkFn != nil {
		return s.MarkFn(ctx, id)
	}
	s.Marked = append(s.Marked, id)
	return nil
}

var (
	_ repository.UserRepository         = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository        = (*OrderRepositoryStub)(nil)
	_ repository.NotificationRepository = (*NotificationRepositoryStub)(nil)
)
