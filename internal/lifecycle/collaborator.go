package lifecycle

import (
	"context"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// Updater applies lifecycle mutations on the source of truth. Implementations
// must apply each call atomically and return the full resulting snapshot.
type Updater interface {
	UpdateOrder(ctx context.Context, orderID string, change model.OrderChange) (*model.Order, error)
	RejectOrder(ctx context.Context, orderID string, reason string) (*model.Order, error)
}

// Fetcher reads authoritative snapshots.
type Fetcher interface {
	FetchOrder(ctx context.Context, orderID string) (*model.Order, error)
	FetchOrdersForUser(ctx context.Context, userID int64) ([]model.Order, error)
}

// Collaborator is the full order API consumed by the lifecycle.
type Collaborator interface {
	Updater
	Fetcher
}
