package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memstore"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Configured() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var store repository.Store
	readiness := map[string]handlers.Pinger{}
	if pg.Configured() {
		store = repository.NewPostgresStore(pg.PoolHandle())
		readiness["postgres"] = pg
	} else {
		store = memstore.New()
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	audit := service.NewAuditRecorder(store.AuditLogs(), nil)

	dashboardDeps := service.DashboardDependencies{
		Store:  store,
		Logger: logger,
	}
	var publisher *events.RedisPublisher
	if redis.Configured() {
		readiness["redis"] = redis
		dashboardDeps.Cache = cache.NewDashboardCache(redis.Client, cache.DefaultDashboardKey)
		dashboardDeps.CacheTTL = cfg.Helpdesk.DashboardCacheTTL()
		publisher = events.NewRedisPublisher(redis.Client, cfg.Redis.EventsChannel)
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Audit:      audit,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	contentService := service.NewTicketContentService(service.ContentDependencies{
		Store:              store,
		Dispatcher:         dispatcher,
		Logger:             logger,
		AttachmentMaxBytes: cfg.Helpdesk.AttachmentMaxBytes,
	})
	directoryService := service.NewDirectoryService(store)
	dashboardService := service.NewDashboardService(dashboardDeps)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(dispatcher, worker.Subscribers{
		Notifications: notificationService,
		Publisher:     publisher,
		Dashboard:     dashboardService,
	}, logger)

	var tokens *auth.TokenManager
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.DevTokenTTL())
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		ServiceRoot: cfg.App.ServiceRoot,
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness, metrics),
		Tickets:     handlers.NewTicketsHandler(ticketService, audit),
		Content:     handlers.NewContentHandler(contentService),
		Directory:   handlers.NewDirectoryHandler(directoryService),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
		Performer:   auth.NewPerformerMiddleware(tokens, cfg.Auth.Required),
	})

	go func() {
		logger.Info("http server starting",
			zap.String("addr", cfg.App.Addr()),
			zap.String("service_root", cfg.App.ServiceRoot),
			zap.Bool("postgres", pg.Configured()),
			zap.Bool("redis", redis.Configured()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
