package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/fluxo/fluxo-backend/internal/config"
	"github.com/dafibh/fluxo/fluxo-backend/internal/handler"
	"github.com/dafibh/fluxo/fluxo-backend/internal/messaging"
	"github.com/dafibh/fluxo/fluxo-backend/internal/middleware"
	"github.com/dafibh/fluxo/fluxo-backend/internal/payment"
	"github.com/dafibh/fluxo/fluxo-backend/internal/report"
	"github.com/dafibh/fluxo/fluxo-backend/internal/repository/postgres"
	"github.com/dafibh/fluxo/fluxo-backend/internal/repository/storage"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/dafibh/fluxo/fluxo-backend/internal/websocket"
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

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
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
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	goalRepo := postgres.NewGoalRepository(pool)
	reminderRepo := postgres.NewReminderRepository(pool)

	// Object storage is optional; receipts and exports answer 503 without it
	var store storage.ObjectStore
	s3Store, err := storage.NewS3ObjectStore(context.Background(), cfg.S3)
	if err != nil {
		log.Warn().Err(err).Msg("Object storage unavailable, receipts and exports disabled")
	} else {
		store = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Object storage ready")
	}

	// Reminder notifications go to the broker when one is configured
	var reminderPublisher messaging.ReminderPublisher = messaging.NewNoOpPublisher()
	if cfg.AMQP.URL != "" {
		amqpClient, err := messaging.NewClient(context.Background(), cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("Message broker unavailable, reminder notifications disabled")
		} else {
			defer amqpClient.Close()
			reminderPublisher = amqpClient
		}
	}

	hub := websocket.NewHub()

	thresholds := report.Thresholds{
		Baixo: cfg.Goals.ThresholdLow,
		Medio: cfg.Goals.ThresholdMedium,
		Alto:  cfg.Goals.ThresholdHigh,
	}

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo)
	categoryService.SetEventPublisher(hub)
	authService := service.NewAuthService(userRepo, clientRepo, categoryService)
	clientService := service.NewClientService(clientRepo, userRepo)
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	transactionService.SetEventPublisher(hub)
	receiptService := service.NewReceiptService(store, transactionRepo)
	receiptService.SetEventPublisher(hub)
	goalService := service.NewGoalService(goalRepo)
	goalService.SetEventPublisher(hub)
	reminderService := service.NewReminderService(reminderRepo, clientRepo)
	reminderService.SetEventPublisher(hub)
	reportService := service.NewReportService(transactionRepo, goalRepo, store, thresholds)

	var checkoutService *service.CheckoutService
	if cfg.Payment.APIKey != "" {
		gateway := payment.NewClient(payment.Config{
			BaseURL:  cfg.Payment.BaseURL,
			ProxyURL: cfg.Payment.ProxyURL,
			APIKey:   cfg.Payment.APIKey,
			Timeout:  cfg.Payment.Timeout,
		}, log.Logger)
		checkoutService = service.NewCheckoutService(gateway, service.PlanPrices{
			payment.PlanMensal:    cfg.Payment.PriceMensal,
			payment.PlanSemestral: cfg.Payment.PriceSemestral,
			payment.PlanAnual:     cfg.Payment.PriceAnual,
		})
	} else {
		log.Warn().Msg("PAYMENT_API_KEY not set, checkout disabled")
	}

	reminderWorker := service.NewReminderWorker(reminderRepo, reminderPublisher, hub, log.Logger, service.ReminderWorkerConfig{
		Interval:      cfg.Reminder.Interval,
		LookaheadDays: cfg.Reminder.LookaheadDays,
	})

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	checkoutLimiter := middleware.NewRateLimiterWithConfig(cfg.Payment.RatePerMinute, cfg.Payment.RateBurst)
	defer checkoutLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, clientService),
		Client:      handler.NewClientHandler(clientService),
		Transaction: handler.NewTransactionHandler(transactionService, receiptService),
		Category:    handler.NewCategoryHandler(categoryService),
		Goal:        handler.NewGoalHandler(goalService),
		Reminder:    handler.NewReminderHandler(reminderService),
		Report:      handler.NewReportHandler(reportService),
		Checkout:    handler.NewCheckoutHandler(checkoutService),
		WebSocket:   handler.NewWebSocketHandler(hub, authMiddleware, clientService, cfg.CORSOrigins),
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
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.ClientIDHeader},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "Retry-After"},
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

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register routes
	handler.RegisterRoutes(e, authMiddleware, clientService, checkoutLimiter, handlers)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	reminderWorker.Start(workerCtx)

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
	reminderWorker.Stop()

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

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Int32("client_id", middleware.GetClientID(c)).
				Msg("request")

			return nil
		}
	}
}
