package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/provnet/isp-admin/docs"
	"github.com/provnet/isp-admin/internal/api/handler"
	"github.com/provnet/isp-admin/internal/api/middleware"
	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
	"github.com/provnet/isp-admin/internal/core/service"
	"github.com/provnet/isp-admin/internal/syncstore"
)

// Deps carries everything the router needs to assemble the HTTP surface.
type Deps struct {
	Storage   ports.SyncStorage
	Local     ports.LocalStore
	Remote    ports.RemoteStore
	Seeder    *syncstore.Seeder
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("ispadmin_http"))

	// --- Services and handlers ---
	authService := service.NewAuthService(deps.Storage, deps.JWTSecret, 24*time.Hour)
	clientService := service.NewClientService(deps.Storage, deps.Logger)
	planService := service.NewPlanService(deps.Storage, deps.Logger)
	userService := service.NewUserService(deps.Storage, deps.Logger)

	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	planHandler := handler.NewPlanHandler(planService)
	userHandler := handler.NewUserHandler(userService)
	storageHandler := handler.NewStorageHandler(deps.Storage, deps.Seeder)

	// --- Auth ---
	e.POST("/auth/login", authHandler.Login)

	// --- Back-office API (JWT + permission tags) ---
	v1 := e.Group("/api/v1", middleware.Auth(deps.JWTSecret))

	clients := v1.Group("/clients", middleware.Permission(domain.PermClients))
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	plans := v1.Group("/plans", middleware.Permission(domain.PermPlans))
	plans.GET("", planHandler.List)
	plans.POST("", planHandler.Create)
	plans.PUT("/:id", planHandler.Update)
	plans.DELETE("/:id", planHandler.Delete)

	users := v1.Group("/users", middleware.Permission(domain.PermUsers))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	storage := v1.Group("/storage")
	storage.GET("/status", storageHandler.Status)
	storage.POST("/reconnect", storageHandler.Reconnect)

	// --- Health probes, metrics, docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Local, deps.Remote)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
