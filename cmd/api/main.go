package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	httptransport "github.com/smartcommunity/portal/internal/api/http"
	"github.com/smartcommunity/portal/internal/config"
	"github.com/smartcommunity/portal/internal/events"
	"github.com/smartcommunity/portal/internal/observability"
	"github.com/smartcommunity/portal/internal/persistence"
	"github.com/smartcommunity/portal/internal/repository"
	"github.com/smartcommunity/portal/internal/service"
	"github.com/smartcommunity/portal/internal/worker"
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

	location, err := cfg.Visitor.Location()
	if err != nil {
		logger.Fatal("invalid visitor config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		userRepo    repository.UserRepository
		visitorRepo repository.VisitorRepository
	)
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		visitorRepo = repository.NewVisitorRepository(pg.PoolHandle())
	} else {
		memUsers := repository.NewMemoryUserRepository()
		userRepo = memUsers
		visitorRepo = repository.NewMemoryVisitorRepository(memUsers)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	var forwarder *events.Forwarder
	if cfg.Events.NATSURL != "" {
		conn, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.App.Name)
		if err != nil {
			logger.Fatal("failed to connect nats", zap.Error(err))
		}
		defer drainNATS(conn, logger)
		forwarder = events.NewForwarder(conn, cfg.Events.SubjectPrefix)
	}
	worker.StartVisitorEventWorker(service.NewNotificationService(dispatcher, forwarder, metrics, logger), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo, Logger: logger})
	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
		logger.Fatal("failed to create bootstrap admin", zap.Error(err))
	}

	visitorService := service.NewVisitorService(service.VisitorDependencies{
		VisitorRepo: visitorRepo,
		Limiter:     persistence.NewAttemptLimiter(redis, cfg.Visitor.VerifyAttemptsLimit, cfg.Visitor.VerifyWindow(), logger),
		Dispatcher:  dispatcher,
		Logger:      logger,
		Location:    location,
		QRCodeSize:  cfg.Visitor.QRCodeSize,
	})

	app := httptransport.NewApp(httptransport.AppDependencies{
		App:      cfg.App,
		Logger:   logger,
		Metrics:  metrics,
		Postgres: pg,
		Redis:    redis,
		UserRepo: userRepo,
		Auth:     authService,
		Visitors: visitorService,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func drainNATS(conn *nats.Conn, logger *zap.Logger) {
	if err := conn.Drain(); err != nil {
		logger.Warn("nats drain", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
