package usecase

import (
	"context"

	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/domain/repository"
)

// NotificationUseCase exposes the outbox to the dispatcher.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(notifications repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications}
}

// SelectBatchForDispatch claims undelivered notifications.
func (u *NotificationUseCase) SelectBatchForDispatch(ctx context.Context, limit int) ([]model.Notification, error) {
	return u.notifications.SelectBatchForDispatch(ctx, limit)
}

// MarkDispatched records successful delivery.
func (u *NotificationUseCase) MarkDispatched(ctx context.Context, id int64) error {
	return u.notifications.MarkDispatched(ctx, id)
}
