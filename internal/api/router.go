package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kodestudio/requirements-api/internal/api/handler"
	"github.com/kodestudio/requirements-api/internal/api/middleware"
	"github.com/kodestudio/requirements-api/internal/core/service"
	mongodb "github.com/kodestudio/requirements-api/internal/infrastructure/db/mongo"
	redisdb "github.com/kodestudio/requirements-api/internal/infrastructure/db/redis"
	"github.com/kodestudio/requirements-api/internal/infrastructure/http/handlers"
	"github.com/kodestudio/requirements-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// All repositories share the single injected database handle.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	requirementRepo := mongodb.NewRequirementRepository(db)
	clientRepo := mongodb.NewClientRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)

	statsCache := redisdb.NewStatsCache(rdb, cfg.StatsCacheTTL)

	requirementService := service.NewRequirementService(requirementRepo, clientRepo, statsCache, cfg.SearchLimit, log)
	clientService := service.NewClientService(clientRepo, cfg.SearchLimit, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	reviewService := service.NewReviewService(reviewRepo, log)

	requirementHandler := handler.NewRequirementHandler(requirementService)
	clientHandler := handler.NewClientHandler(clientService)
	authHandler := handler.NewAuthHandler(authService)
	reviewHandler := handler.NewReviewHandler(reviewService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/verify", authHandler.Verify)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- API routes ---
	api := e.Group("/api", middleware.Auth(cfg.JWTSecret))

	api.POST("/requirements", requirementHandler.Create)
	api.GET("/requirements", requirementHandler.List)
	api.GET("/requirements/search", requirementHandler.Search)
	api.GET("/requirements/stats", requirementHandler.Stats)
	api.GET("/requirements/:id", requirementHandler.Get)
	api.PUT("/requirements/:id", requirementHandler.Update)
	api.DELETE("/requirements/:id", requirementHandler.Delete)

	api.POST("/clients", clientHandler.Create)
	api.GET("/clients", clientHandler.List)
	api.GET("/clients/search", clientHandler.Search)
	api.GET("/clients/:id", clientHandler.Get)
	api.DELETE("/clients/:id", clientHandler.Delete)

	api.GET("/users/username/:username", authHandler.GetUserByUsername)
	api.GET("/users/:id", authHandler.GetUser)
	api.PUT("/users/:id", authHandler.UpdateUser)

	api.GET("/reviews", reviewHandler.List)

	return e
}
