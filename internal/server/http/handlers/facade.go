package handlers

import (
	"context"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (model.Principal, error)
	CreateUser(ctx context.Context, actor model.Principal, login, password string, role model.Role) (*model.User, error)
}

// OrderFacade encapsulates order operations exposed via HTTP. Every call
// carries the caller so the facade can authorize it.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, actor model.Principal, input model.Submission) (*model.Order, error)
	Orders(ctx context.Context, actor model.Principal, userID int64) ([]model.Order, error)
	ListOrders(ctx context.Context, actor model.Principal, status *model.OrderStatus, limit int) ([]model.Order, error)
	Order(ctx context.Context, actor model.Principal, id string) (*model.Order, error)
	ChangeOrder(ctx context.Context, actor model.Principal, id string, change model.OrderChange) (*model.Order, error)
	RejectOrder(ctx context.Context, actor model.Principal, id, reason string) (*model.Order, error)
	DeleteOrder(ctx context.Context, actor model.Principal, id string) error
}

// UniformFacade aggregates the full set of operations used across handlers.
type UniformFacade interface {
	AuthFacade
	OrderFacade
}
