package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/readshelf/library-system/internal/auth/api/handler"
	"github.com/readshelf/library-system/internal/auth/api/middleware"
	"github.com/readshelf/library-system/internal/auth/config"
	"github.com/readshelf/library-system/internal/auth/core/service"
	authmongo "github.com/readshelf/library-system/internal/auth/infrastructure/db/mongo"
	authredis "github.com/readshelf/library-system/internal/auth/infrastructure/db/redis"
	"github.com/readshelf/library-system/internal/pkg/validation"
	"github.com/readshelf/library-system/internal/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	userRepo := authmongo.NewUserRepository(db)
	revocations := authredis.NewRevocationSet(rdb)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	verifier := token.NewVerifier(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, revocations, issuer, verifier, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	requireAuth := middleware.Auth(verifier)

	// --- Auth routes ---
	api := e.Group("/api/auth")
	api.POST("/register/", authHandler.Register)
	api.POST("/token/", authHandler.Token)
	api.POST("/token/refresh/", authHandler.Refresh)
	api.POST("/logout/", authHandler.Logout, requireAuth)
	api.POST("/change-password/", authHandler.ChangePassword, requireAuth)
	api.GET("/users/:id/", userHandler.GetUser, requireAuth)
	api.GET("/profile/", userHandler.GetProfile, requireAuth)
	api.PUT("/profile/", userHandler.UpdateProfile, requireAuth)
	api.PATCH("/profile/", userHandler.UpdateProfile, requireAuth)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName("auth")))

	return e
}
