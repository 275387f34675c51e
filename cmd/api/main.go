package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/atlasdesk/support-service/internal/api/http"
	"github.com/atlasdesk/support-service/internal/api/http/handlers"
	"github.com/atlasdesk/support-service/internal/auth"
	"github.com/atlasdesk/support-service/internal/config"
	"github.com/atlasdesk/support-service/internal/events"
	"github.com/atlasdesk/support-service/internal/identifier"
	"github.com/atlasdesk/support-service/internal/observability"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/service"
	"github.com/atlasdesk/support-service/internal/tenant"
	"github.com/atlasdesk/support-service/internal/worker"
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

	tenants := tenant.NewPoolStore(cfg.Tenants.DSNs, cfg.Postgres, logger)
	defer tenants.Close()

	if cfg.Postgres.RunMigrations {
		for _, tenantID := range tenants.Tenants() {
			db, err := tenants.Handle(ctx, tenantID)
			if err != nil {
				logger.Fatal("failed to reach tenant store", zap.String("tenant", tenantID), zap.Error(err))
			}
			if err := persistence.RunMigrations(ctx, db, tenantID, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.String("tenant", tenantID), zap.Error(err))
			}
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger, cfg.Notification)

	ticketRepo := repository.NewTicketRepository()
	typeRepo := repository.NewTicketTypeRepository()
	statsRepo := repository.NewTicketStatsRepository()
	activityRepo := repository.NewActivityRepository()
	interventionRepo := repository.NewInterventionRepository()
	userRepo := repository.NewUserRepository()
	catalogRepo := repository.NewCatalogRepository()

	activityService := service.NewActivityService(tenants, activityRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Tenants:    tenants,
		TicketRepo: ticketRepo,
		TypeRepo:   typeRepo,
		StatsRepo:  statsRepo,
		Activity:   activityService,
		Sequence:   identifier.NewSequence(),
		Codes:      identifier.NewCodeGenerator(),
		Dispatcher: dispatcher,
	})
	typeService := service.NewTicketTypeService(tenants, typeRepo)
	interventionService := service.NewInterventionService(service.InterventionDependencies{
		Tenants:          tenants,
		InterventionRepo: interventionRepo,
		TicketRepo:       ticketRepo,
		Activity:         activityService,
		Dispatcher:       dispatcher,
	})
	publicService := service.NewPublicService(service.PublicDependencies{
		Tenants:          tenants,
		TicketRepo:       ticketRepo,
		TypeRepo:         typeRepo,
		UserRepo:         userRepo,
		CatalogRepo:      catalogRepo,
		InterventionRepo: interventionRepo,
		ActivityRepo:     activityRepo,
		Core:             ticketService,
		Intake:           cfg.PublicIntake,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, tenants, cfg.Tenants.Default, redis, metrics),
		Tickets:         handlers.NewTicketsHandler(ticketService),
		TicketTypes:     handlers.NewTicketTypesHandler(typeService),
		Interventions:   handlers.NewInterventionsHandler(interventionService),
		Activities:      handlers.NewActivitiesHandler(activityService),
		Public:          handlers.NewPublicHandler(publicService, cfg.Tenants.Default),
		Tokens:          tokens,
		Redis:           redis,
		PublicPerMinute: cfg.RateLimit.PublicPerMinute,
		Logger:          logger,
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
