package notify

import (
	"context"
	"log/slog"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// Notifier delivers lifecycle notifications to students.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// LogNotifier writes notifications to the application log. It is used when
// no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification and never fails.
func (n *LogNotifier) Notify(ctx context.Context, notification model.Notification) error {
	n.logger.InfoContext(ctx, "notification",
		slog.Int64("id", notification.ID),
		slog.String("order", notification.OrderID),
		slog.Int64("user_id", notification.UserID),
		slog.String("kind", string(notification.Kind)),
		slog.String("status", notification.Status.String()),
		slog.String("message", notification.Message),
	)
	return nil
}
