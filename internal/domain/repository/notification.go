package repository

import (
	"context"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// NotificationRepository gives the dispatcher access to the outbox.
type NotificationRepository interface {
	SelectBatchForDispatch(ctx context.Context, limit int) ([]model.Notification, error)
	MarkDispatched(ctx context.Context, id int64) error
}
