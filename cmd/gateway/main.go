package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/messagegate/smsgate/internal/config"
	"github.com/messagegate/smsgate/internal/handler"
	"github.com/messagegate/smsgate/internal/infra/postgresql"
	"github.com/messagegate/smsgate/internal/infra/postgresql/migrations"
	infraredis "github.com/messagegate/smsgate/internal/infra/redis"
	"github.com/messagegate/smsgate/internal/observability"
	"github.com/messagegate/smsgate/internal/provider"
	"github.com/messagegate/smsgate/internal/provider/twilio"
	"github.com/messagegate/smsgate/internal/queue"
	"github.com/messagegate/smsgate/internal/repository"
	"github.com/messagegate/smsgate/internal/service"
	"github.com/messagegate/smsgate/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("gateway exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	messageRepo := repository.NewGormMessageRepo(db)
	bridgeRepo := repository.NewGormBridgeRepo(db)

	twilioProvider, err := twilio.NewProvider(cfg.TwilioAPIURL, cfg.CallbackBaseURL(), logger)
	if err != nil {
		return fmt.Errorf("twilio provider init failed: %w", err)
	}

	providers, err := provider.NewFactory(twilioProvider)
	if err != nil {
		return fmt.Errorf("provider factory init failed: %w", err)
	}

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.TenantRateLimitPerSec)
	if err != nil {
		return fmt.Errorf("rate limiter init failed: %w", err)
	}

	locks := service.NewMessageLocks()

	dispatcher, err := service.NewDispatcher(messageRepo, bridgeRepo, providers, locks, cfg.DispatchQueueDepth, logger)
	if err != nil {
		return fmt.Errorf("dispatcher init failed: %w", err)
	}
	dispatcher.SetMetrics(metrics)
	dispatcher.SetRateLimiter(limiter)

	reconciler, err := service.NewReconciler(messageRepo, locks, twilio.NormalizeStatus, logger)
	if err != nil {
		return fmt.Errorf("reconciler init failed: %w", err)
	}
	reconciler.SetMetrics(metrics)

	recovery, err := service.NewRecoveryTask(
		messageRepo,
		dispatcher,
		time.Duration(cfg.BootstrapDelaySeconds)*time.Second,
		cfg.BootstrapPageSize,
		logger,
	)
	if err != nil {
		return fmt.Errorf("recovery task init failed: %w", err)
	}
	recovery.SetMetrics(metrics)

	statusService, err := service.NewDeliveryStatusService(messageRepo)
	if err != nil {
		return fmt.Errorf("status service init failed: %w", err)
	}

	// The status event stream is optional; without a broker url the gateway
	// runs with events disabled.
	if cfg.RabbitMQURL != "" {
		broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq initialization failed: %w", err)
		}
		publisher := queue.NewRabbitMQPublisher(broker)
		defer publisher.Close() //nolint:errcheck

		dispatcher.SetEventPublisher(publisher)
		reconciler.SetEventPublisher(publisher)
		logger.Info("status event publishing enabled", zap.String("queue", queue.StatusQueueName))
	}

	app := fiber.New(fiber.Config{
		AppName:      "smsgate",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(metrics.HTTPMiddleware())

	if err := handler.RegisterMessageRoutes(app, dispatcher, statusService); err != nil {
		return fmt.Errorf("message routes init failed: %w", err)
	}
	if err := handler.RegisterReportRoutes(app, reconciler, logger); err != nil {
		return fmt.Errorf("report routes init failed: %w", err)
	}
	handler.RegisterHealthRoutes(app, map[string]handler.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("smsgate api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return dispatcher.Start(gctx)
	})

	g.Go(func() error {
		return recovery.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	return g.Wait()
}
