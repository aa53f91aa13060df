package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/pod-tracker/internal/api/http"
	"github.com/spec-kit/pod-tracker/internal/api/http/handlers"
	"github.com/spec-kit/pod-tracker/internal/auth"
	"github.com/spec-kit/pod-tracker/internal/config"
	"github.com/spec-kit/pod-tracker/internal/events"
	"github.com/spec-kit/pod-tracker/internal/observability"
	"github.com/spec-kit/pod-tracker/internal/persistence"
	"github.com/spec-kit/pod-tracker/internal/repository"
	"github.com/spec-kit/pod-tracker/internal/service"
	"github.com/spec-kit/pod-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	identityRepo := repository.NewIdentityRepository(pool)
	podRepo := repository.NewPodRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)
	auditRepo := repository.NewMergeAuditRepository(pool)
	txManager := repository.NewTxManager(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	identityService := service.NewIdentityService(identityRepo)
	ledgerService := service.NewLedgerService(ledgerRepo, logger)
	feedService := service.NewFeedService(notificationRepo, redis.Client, logger)
	notifierService := service.NewNotifierService(notificationRepo, identityService, feedService, logger)
	podService := service.NewPodService(service.PodDependencies{
		PodRepo:    podRepo,
		IssueRepo:  issueRepo,
		Ledger:     ledgerService,
		Notifier:   notifierService,
		Identities: identityService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	timelineService := service.NewTimelineService(podRepo, ledgerRepo)
	slaService := service.NewSlaService(service.SlaDependencies{
		PodRepo:          podRepo,
		NotificationRepo: notificationRepo,
		Identities:       identityService,
		Feed:             feedService,
		Dispatcher:       dispatcher,
		Logger:           logger,
		WindowDays:       cfg.Sweep.WindowBusinessDays,
	})
	mergeService := service.NewMergeService(service.MergeDependencies{
		IdentityRepo:     identityRepo,
		PodRepo:          podRepo,
		IssueRepo:        issueRepo,
		NotificationRepo: notificationRepo,
		LedgerRepo:       ledgerRepo,
		AuditRepo:        auditRepo,
		Tx:               txManager,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	authService := service.NewAuthService(*cfg, identityRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)
	sweeper := worker.NewSlaSweeper(slaService, cfg.Sweep, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), identityRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService)
	podsHandler := handlers.NewPodsHandler(podService, timelineService)
	notificationsHandler := handlers.NewNotificationsHandler(feedService)
	identitiesHandler := handlers.NewIdentitiesHandler(identityService, mergeService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Pods:           podsHandler,
		Notifications:  notificationsHandler,
		Identities:     identitiesHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
