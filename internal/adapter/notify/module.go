package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/uniformorders/internal/config"
)

// Module exposes the configured notifier to fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	if p.Config.NotificationWebhookURL == "" {
		return NewLogNotifier(p.Logger), nil
	}
	return NewWebhookNotifier(p.Config.NotificationWebhookURL, p.Logger)
}
