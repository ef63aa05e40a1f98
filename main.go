package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Eursukkul/dojo-booking/config"
	"github.com/Eursukkul/dojo-booking/internal/consumer"
	"github.com/Eursukkul/dojo-booking/internal/handler"
	"github.com/Eursukkul/dojo-booking/internal/middleware"
	"github.com/Eursukkul/dojo-booking/internal/repository"
	"github.com/Eursukkul/dojo-booking/internal/service"
	"github.com/Eursukkul/dojo-booking/pkg/cache"
	"github.com/Eursukkul/dojo-booking/pkg/database"
	applog "github.com/Eursukkul/dojo-booking/pkg/logger"
	"github.com/Eursukkul/dojo-booking/pkg/rabbitmq"
	"github.com/Eursukkul/dojo-booking/pkg/sheets"
)

func main() {
	cfg := config.Load()

	logger, err := applog.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Remote store
	store := sheets.NewClient(cfg.ScriptURL, cfg.RemoteTimeout, logger)
	inquiryURL := cfg.InquiryScriptURL
	if inquiryURL == "" {
		inquiryURL = cfg.ScriptURL
	}
	inquiries := sheets.NewClient(inquiryURL, cfg.RemoteTimeout, logger)

	// Repositories
	submissionRepo := repository.NewSubmissionRepository(db)
	snapshotCache := repository.NewSnapshotCache(rdb, cfg.SnapshotTTL)
	adminSessions := repository.NewAdminSessionRepository(rdb)

	slotSvc := service.NewSlotService(store, snapshotCache, cfg.Location(), logger)

	// Without a broker, changes are refreshed in-process.
	var publisher service.EventPublisher
	mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, logger)
	if err != nil {
		logger.Warn("rabbitmq publisher unavailable, refreshing locally", zap.Error(err))
	} else {
		defer mqPublisher.Close()
		publisher = mqPublisher
	}

	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, logger)
	if err != nil {
		logger.Warn("rabbitmq consumer unavailable", zap.Error(err))
	} else {
		defer mqConsumer.Close()
		msgs, err := mqConsumer.Consume()
		if err != nil {
			logger.Fatal("failed to start consuming", zap.Error(err))
		}
		consumer.NewRefreshConsumer(slotSvc, cfg.RemoteTimeout, logger).Start(msgs)
	}

	notifier := service.NewChangeNotifier(slotSvc, publisher, cfg.RemoteTimeout, logger)

	// Services
	bookingSvc := service.NewBookingService(store, slotSvc, submissionRepo, notifier, service.BookingOptions{
		CountdownTicks: cfg.SuccessCountdownTicks,
		Tick:           cfg.SuccessTick,
		SessionTTL:     cfg.BookingSessionTTL,
		RemoteTimeout:  cfg.RemoteTimeout,
	}, logger)
	go bookingSvc.Run(ctx)

	verifier := service.DenyAll()
	if cfg.AdminPasswordHash != "" {
		verifier, err = service.NewBcryptVerifier(cfg.AdminUser, cfg.AdminPasswordHash)
		if err != nil {
			logger.Fatal("invalid admin credentials", zap.Error(err))
		}
	} else {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin login disabled")
	}
	adminSvc := service.NewAdminService(store, slotSvc, verifier, adminSessions, submissionRepo, notifier, cfg.AdminSessionTTL, logger)

	var checkout service.CheckoutCreator
	if cfg.StripeSecretKey != "" {
		checkout = service.NewStripeCheckout(cfg.StripeSecretKey)
	}
	paymentSvc := service.NewPaymentService(bookingSvc, checkout, service.PaymentOptions{
		WebhookSecret:  cfg.StripeWebhookSecret,
		SuccessURL:     cfg.CheckoutSuccessURL,
		CancelURL:      cfg.CheckoutCancelURL,
		CheckoutExpiry: cfg.CheckoutExpiry,
	}, logger)

	inquirySvc := service.NewInquiryService(inquiries, logger)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(logger)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "dojo-booking"})
	})

	limit := middleware.RateLimit(cfg.RateLimitPerMin, logger)
	handler.NewAvailabilityHandler(slotSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e, limit)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(e, limit)
	handler.NewInquiryHandler(inquirySvc).RegisterRoutes(e, limit)
	handler.NewAdminHandler(adminSvc).RegisterRoutes(e, limit)

	go func() {
		logger.Info("dojo booking service starting", zap.String("port", cfg.ServerPort), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("dojo booking service stopped")
}
