package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/server/http/handlers"
	"github.com/polkiloo/uniformorders/internal/server/http/middleware"
)

var staffRoles = []model.Role{model.RoleJobOrder, model.RoleBAO, model.RoleCoordinator, model.RoleSuperAdmin}

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.UniformFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authenticated := middleware.AuthRequired(facade)

	userAuth := user.Group("")
	userAuth.Use(authenticated)
	userAuth.POST("/orders", orderHandler.Submit)
	userAuth.GET("/orders", orderHandler.Own)

	// Students may read their own orders here; the facade checks ownership.
	api.GET("/users/:userID/orders", authenticated, orderHandler.ForUser)

	orders := api.Group("/orders")
	orders.Use(authenticated)
	orders.GET("", middleware.RequireRoles(staffRoles...), orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id", middleware.RequireRoles(staffRoles...), orderHandler.Change)
	orders.POST("/:id/reject", middleware.RequireRoles(staffRoles...), orderHandler.Reject)
	orders.DELETE("/:id", middleware.RequireRoles(model.RoleSuperAdmin), orderHandler.Delete)

	admin := api.Group("/admin")
	admin.Use(authenticated, middleware.RequireRoles(model.RoleSuperAdmin))
	admin.POST("/users", authHandler.CreateUser)

	return engine
}
