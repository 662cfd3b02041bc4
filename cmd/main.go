package main

import (
	"dailydrop-service/internal/handler"
	"dailydrop-service/internal/middleware"
	"dailydrop-service/internal/service"
	"dailydrop-service/internal/store"
	"dailydrop-service/pkg/access"
	"dailydrop-service/pkg/config"
	"dailydrop-service/pkg/database"
	"dailydrop-service/pkg/jwtutil"
	"dailydrop-service/pkg/logger"
	"dailydrop-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting daily drop service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize identity token verification
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Wire collaborators: the authorization client and the stores are
	// constructed once here and injected into the services
	resolver := access.NewClient(&cfg.Access, log)
	dropStore := store.NewGormDropStore(database.GetDB())
	prefStore := store.NewGormPreferenceStore(database.GetDB())

	dropService := service.NewDropService(resolver, dropStore, log)
	streakService := service.NewStreakService(resolver, prefStore, log)

	dropHandler := handler.NewDropHandler(dropService, cfg.Access.DefaultTenantID)
	streakHandler := handler.NewStreakHandler(streakService)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(middleware.MetricsMiddleware)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// API routes - all require an authenticated identity
	api := e.Group("/api")
	api.Use(middleware.Auth(resolver))

	api.GET("/check-access", dropHandler.CheckAccess)

	// Daily drop routes
	api.GET("/daily-drop", dropHandler.GetToday)
	api.POST("/daily-drop", dropHandler.Publish)
	api.GET("/daily-drop/list", dropHandler.List)
	api.PUT("/daily-drop/update", dropHandler.Update)
	api.DELETE("/daily-drop/delete", dropHandler.Delete)

	// Member engagement routes
	api.POST("/check-in", streakHandler.CheckIn)
	api.GET("/streak", streakHandler.GetStreak)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
