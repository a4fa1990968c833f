package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/enrollment-service/internal/api/http"
	"github.com/spec-kit/enrollment-service/internal/api/http/handlers"
	"github.com/spec-kit/enrollment-service/internal/config"
	"github.com/spec-kit/enrollment-service/internal/embedding"
	"github.com/spec-kit/enrollment-service/internal/events"
	"github.com/spec-kit/enrollment-service/internal/observability"
	"github.com/spec-kit/enrollment-service/internal/persistence"
	"github.com/spec-kit/enrollment-service/internal/repository"
	"github.com/spec-kit/enrollment-service/internal/service"
	"github.com/spec-kit/enrollment-service/internal/worker"
	"github.com/spec-kit/enrollment-service/internal/workflow"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	dependencies := map[string]handlers.Pinger{}
	if pg.PoolHandle() != nil {
		dependencies["postgres"] = pg
	}

	codec, err := repository.NewSessionCodec(cfg.Session.Codec)
	if err != nil {
		logger.Fatal("invalid session codec", zap.Error(err))
	}

	var (
		sessions repository.SessionStore
		locker   repository.SessionLocker = repository.NewLocalLocker()
	)
	if cfg.Session.Store == "redis" || cfg.Session.LockBackend == "redis" {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		dependencies["redis"] = redis

		if cfg.Session.Store == "redis" {
			sessions = repository.NewRedisSessionStore(redis.Client, codec, cfg.Session.KeyPrefix, cfg.Session.TTL())
		}
		if cfg.Session.LockBackend == "redis" {
			locker = repository.NewRedisLocker(redis.Client, cfg.Session.KeyPrefix, cfg.Session.LockTTL(), cfg.Session.LockPoll(), logger)
		}
	}
	if sessions == nil {
		logger.Warn("using in-memory session store; sessions are lost on restart")
		sessions = repository.NewMemorySessionStore(codec)
	}

	var (
		tickets repository.TicketSink
		history repository.SessionHistoryRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		tickets = repository.NewTicketRepository(pool)
		history = repository.NewSessionHistoryRepository(pool)
	} else {
		logger.Warn("using in-memory ticket sink")
		tickets = repository.NewMemoryTicketSink()
	}

	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal("failed to init embeddings", zap.Error(err))
	}

	catalog := workflow.DefaultCatalog()
	if cfg.Prompts.File != "" {
		catalog, err = workflow.LoadCatalog(cfg.Prompts.File)
		if err != nil {
			logger.Fatal("failed to load prompt catalog", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))
	if history != nil {
		worker.StartHistoryWorker(service.NewHistoryService(dispatcher, history, logger))
	}

	engine := service.NewDialogueEngine(service.EngineDependencies{
		Store:       sessions,
		Locker:      locker,
		Tickets:     tickets,
		Embedder:    embedder,
		Flow:        workflow.NewFlow(catalog),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
		TurnTimeout: cfg.Session.TurnTimeout(),
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Enrollment: handlers.NewEnrollmentHandler(engine),
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
