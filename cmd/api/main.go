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

	httptransport "github.com/ezinne-pharmarcy/backend/internal/api/http"
	"github.com/ezinne-pharmarcy/backend/internal/api/http/handlers"
	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/config"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/events"
	"github.com/ezinne-pharmarcy/backend/internal/mq"
	"github.com/ezinne-pharmarcy/backend/internal/observability"
	"github.com/ezinne-pharmarcy/backend/internal/persistence"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
	"github.com/ezinne-pharmarcy/backend/internal/repository/memory"
	"github.com/ezinne-pharmarcy/backend/internal/service"
	"github.com/ezinne-pharmarcy/backend/internal/worker"
)

const auditBuffer = 256

type repositories struct {
	accounts    repository.AccountRepository
	sessions    repository.SessionStore
	medications repository.MedicationRepository
	carts       repository.SaleRepository
	orders      repository.SaleRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if _, err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(cfg, pg, redis, logger)
	metrics := observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher()
	buffer := 0
	if cfg.Audit.AMQPURL != "" {
		buffer = auditBuffer
	}
	auditService := service.NewAuditService(dispatcher, logger, buffer)
	auditService.RegisterHandlers()

	if cfg.Audit.AMQPURL != "" {
		broker, err := mq.NewRabbitMQ(cfg.Audit)
		if err != nil {
			logger.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer broker.Close() //nolint:errcheck
		worker.StartAuditWorker(ctx, auditService.Events(), broker, cfg.Audit.Queue, logger)
	}

	machine := auth.NewSessionMachine(cfg.Auth.SessionTTL)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())

	authService, err := service.NewAuthService(service.AuthDependencies{
		Accounts:   repos.accounts,
		Sessions:   repos.sessions,
		Machine:    machine,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}
	accountService := service.NewAccountService(service.AccountDependencies{
		Accounts:   repos.accounts,
		Sessions:   repos.sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	medicationService := service.NewMedicationService(repos.medications)
	cartService := service.NewSaleService(repos.carts, repos.medications, nil)
	orderService := service.NewSaleService(repos.orders, repos.medications, nil)

	resolver := auth.NewResolver(auth.ResolverDeps{
		Tokens:     tokens,
		Accounts:   repos.accounts,
		Sessions:   repos.sessions,
		Machine:    machine,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(resolver, cfg.Auth.CookieName)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	deps := map[string]handlers.Pinger{}
	if pg.Enabled() {
		deps["postgres"] = pg
	}
	if redis.Enabled() {
		deps["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authService, handlers.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}),
		Owners:         handlers.NewAccountsHandler(accountService, domain.KindOwner),
		AdminStaff:     handlers.NewAccountsHandler(accountService, domain.KindAdminStaff),
		RetailStaff:    handlers.NewAccountsHandler(accountService, domain.KindRetailStaff),
		Medications:    handlers.NewMedicationsHandler(medicationService),
		Carts:          handlers.NewSalesHandler(cartService, domain.SaleCart),
		Orders:         handlers.NewSalesHandler(orderService, domain.SaleOrder),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   httptransport.NewIPRateLimiter(cfg.RateLimit.LoginPerSecond, cfg.RateLimit.LoginBurst),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.ShutdownWithTimeout(10 * time.Second)
}

func buildRepositories(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) repositories {
	var repos repositories
	if pg.Enabled() {
		db := pg.DB()
		repos.accounts = repository.NewAccountRepository(db)
		repos.medications = repository.NewMedicationRepository(db)
		repos.carts = repository.NewSaleRepository(db, domain.SaleCart)
		repos.orders = repository.NewSaleRepository(db, domain.SaleOrder)
	} else {
		repos.accounts = memory.NewAccounts()
		repos.medications = memory.NewMedications()
		repos.carts = memory.NewSales(domain.SaleCart)
		repos.orders = memory.NewSales(domain.SaleOrder)
	}

	switch cfg.Session.Backend {
	case config.SessionBackendPostgres:
		repos.sessions = repository.NewSessionStore(pg.DB())
	case config.SessionBackendRedis:
		repos.sessions = repository.NewRedisSessionStore(redis.Client, cfg.Session.RedisKeyPrefix, cfg.Auth.RefreshTokenTTL())
	default:
		repos.sessions = memory.NewSessions()
	}
	logger.Info("session store selected", zap.String("backend", string(cfg.Session.Backend)))
	return repos
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
