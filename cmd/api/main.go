package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/clasifica/clasifica-backend/internal/config"
	"github.com/clasifica/clasifica-backend/internal/handler"
	"github.com/clasifica/clasifica-backend/internal/middleware"
	"github.com/clasifica/clasifica-backend/internal/repository/postgres"
	"github.com/clasifica/clasifica-backend/internal/repository/storage"
	"github.com/clasifica/clasifica-backend/internal/service"
	"github.com/clasifica/clasifica-backend/internal/spreadsheet"
	"github.com/clasifica/clasifica-backend/internal/training"
	"github.com/clasifica/clasifica-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	ownerRepo := postgres.NewOwnerRepository(pool)

	// Upload archive is optional
	var archive storage.UploadArchive = storage.NoOpUploadArchive{}
	if cfg.S3.Bucket != "" {
		s3Archive, err := storage.NewS3UploadArchive(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize upload archive")
		}
		archive = s3Archive
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Upload archive enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, uploads will not be archived")
	}

	// Initialize services
	reconciler := service.NewReconciler(workspaceRepo, service.NewWorkspaceSerializer(), workspaceRepo, cfg.DocumentPolicy)
	workspaceService := service.NewWorkspaceService(
		workspaceRepo,
		reconciler,
		spreadsheet.NewExcelReader(),
		archive,
		training.NewClient(cfg.Training),
	)

	// Live workspace feed is optional
	var publisher websocket.EventPublisher = websocket.NoOpPublisher{}
	var hub *websocket.Hub
	if cfg.WebSocketEnabled {
		hub = websocket.NewHubWithRetention(cfg.EventRetention)
		publisher = hub
		log.Info().Dur("retention", cfg.EventRetention).Msg("Live workspace feed enabled")
	} else {
		log.Warn().Msg("WS_ENABLED is false, workspace events will not be published")
	}
	workspaceService.SetEventPublisher(publisher)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, ownerRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, cfg.MaxUploadBytes)
	var wsHandler *handler.WebSocketHandler
	if hub != nil {
		wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, ownerRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
		}
		wsHandler = handler.NewWebSocketHandler(hub, wsValidator, workspaceService, cfg.CORSOrigins)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Leave room for the multipart envelope around the largest accepted file
	e.Use(echomiddleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+(1<<20), 10)))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		status := map[string]interface{}{"status": "ok"}
		if hub != nil {
			status["websocket_clients"] = hub.TotalClientCount()
		}
		return c.JSON(http.StatusOK, status)
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, workspaceHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
