// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cachelock-service/internal/app/service"
	"cachelock-service/internal/transport/httpserver/dto"
	"cachelock-service/internal/transport/httpserver/handler"
	"cachelock-service/internal/transport/httpserver/middleware"
	"cachelock-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured. gatherer
// backs /metrics; nil skips the route.
func NewServer(
	cfg ServerConfig,
	cacheSvc *service.CacheService,
	lockSvc *service.LockService,
	gatherer prometheus.Gatherer,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "cachelock-service",
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler(logger),
		DisableStartupMessage: true,
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// so liveness and readiness checks answer even during high load
	app.Use(middleware.NewHealthCheck(cacheSvc.Ready, lockSvc.Ready))

	app.Use(middleware.RequestID())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS())
	app.Use(compress.New())

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	cacheHandler := handler.NewCacheHandler(cacheSvc, v, logger)
	lockHandler := handler.NewLockHandler(lockSvc, v, logger)

	registerRoutes(app, cacheHandler, lockHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	cacheHandler *handler.CacheHandler,
	lockHandler *handler.LockHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	v1 := app.Group("/api/v1")

	cache := v1.Group("/cache")
	cache.Delete("/", cacheHandler.Clear)
	cache.Get("/:key", cacheHandler.Get)
	cache.Put("/:key", cacheHandler.Put)
	cache.Delete("/:key", cacheHandler.Delete)

	locks := v1.Group("/locks")
	locks.Post("/:key/try", lockHandler.TryAcquire)
	locks.Post("/:key", lockHandler.Acquire)
	locks.Delete("/:key", lockHandler.Release)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := handler.StatusOf(err)
		errCode := "UNHANDLED_ERROR"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
			errCode = "NOT_FOUND"
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		case code >= 400:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error:   err.Error(),
			Code:    errCode,
			TraceID: middleware.TraceID(c),
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
