package repository

import (
	"context"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// OrderFilter narrows staff order listings.
type OrderFilter struct {
	Status *model.OrderStatus
	Limit  int
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	// Update stores order only if the persisted status still equals expected
	// and enqueues notifications in the same transaction. It returns
	// errors.ErrConflict when the status has moved on.
	Update(ctx context.Context, order model.Order, expected model.OrderStatus, notifications []model.Notification) (*model.Order, error)
	Delete(ctx context.Context, id string) error
}
