package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/uniformorders/internal/adapter/notify"
	"github.com/polkiloo/uniformorders/internal/app"
	"github.com/polkiloo/uniformorders/internal/config"
	"github.com/polkiloo/uniformorders/internal/logger"
	"github.com/polkiloo/uniformorders/internal/pkg/auth"
	"github.com/polkiloo/uniformorders/internal/server/http/router"
	"github.com/polkiloo/uniformorders/internal/storage/postgres"
	"github.com/polkiloo/uniformorders/internal/usecase"
)

// Module composes the order service graph. Extra options are appended so
// callers can replace any component.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
