package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/readshelf/library-system/internal/books/api/handler"
	"github.com/readshelf/library-system/internal/books/api/middleware"
	"github.com/readshelf/library-system/internal/books/config"
	"github.com/readshelf/library-system/internal/books/core/service"
	"github.com/readshelf/library-system/internal/books/identity"
	booksmongo "github.com/readshelf/library-system/internal/books/infrastructure/db/mongo"
	"github.com/readshelf/library-system/internal/pkg/validation"
	"github.com/readshelf/library-system/internal/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// Every /api/books route sits behind the identity resolver.
func NewRouter(db *mongo.Database, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("books"))

	// --- Dependencies ---
	bookRepo := booksmongo.NewBookRepository(db)
	verifier := token.NewVerifier(cfg.JWTSecret)
	resolver := identity.NewResolver(cfg.AuthServiceURL, cfg.AuthTimeout, verifier, log)
	bookService := service.NewBookService(bookRepo, log)

	bookHandler := handler.NewBookHandler(bookService, resolver, log)
	requireAuth := middleware.Auth(resolver)

	// --- Book routes ---
	api := e.Group("/api/books", requireAuth)
	api.GET("/", bookHandler.List)
	api.POST("/", bookHandler.Create)
	api.GET("/my_books/", bookHandler.MyBooks)
	api.GET("/statistics/", bookHandler.Statistics)
	api.GET("/:id/", bookHandler.Get)
	api.PUT("/:id/", bookHandler.Update)
	api.PATCH("/:id/", bookHandler.Update)
	api.DELETE("/:id/", bookHandler.Delete)
	api.GET("/:id/with_user_info/", bookHandler.WithUserInfo)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName("books")))

	return e
}
