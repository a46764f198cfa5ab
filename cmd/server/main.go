package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"payment-broker.backend/internal/config"
	"payment-broker.backend/internal/infrastructure/datasources/postgres"
	"payment-broker.backend/internal/infrastructure/events"
	"payment-broker.backend/internal/infrastructure/gateway"
	"payment-broker.backend/internal/infrastructure/repositories"
	"payment-broker.backend/internal/infrastructure/secrets"
	"payment-broker.backend/internal/interfaces/http/handlers"
	"payment-broker.backend/internal/interfaces/http/middleware"
	"payment-broker.backend/internal/usecases"
	"payment-broker.backend/pkg/crypto"
	"payment-broker.backend/pkg/jwt"
	"payment-broker.backend/pkg/logger"
	"payment-broker.backend/pkg/metrics"
	"payment-broker.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadCfg   = config.Load
	initLog   = logger.Init
	initRedis = redis.Init
	openDB    = postgres.NewConnection
	newVault  = func(ctx context.Context, cfg config.VaultConfig) (usecases.SecretVault, error) {
		return secrets.NewVaultClientFromConfig(ctx, secrets.VaultConfig{
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			MaxAttempts:     cfg.MaxAttempts,
		})
	}
	runServer = func(ctx context.Context, handler http.Handler, port string) error {
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runMainProcess(ctx); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess(ctx context.Context) error {
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	initLog(cfg.Server.Env, cfg.Server.LogLevel)
	defer logger.Sync()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
		logger.Info(ctx, "Database migrated")
	}

	vault, err := newVault(ctx, cfg.Vault)
	if err != nil {
		return fmt.Errorf("failed to initialize secret vault: %w", err)
	}

	r, err := buildRouter(cfg, db, vault, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	logger.Info(ctx, "Payment broker starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(r.Routes())),
	)

	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

// buildRouter wires repositories, usecases and handlers into a gin engine
func buildRouter(cfg *config.Config, db *gorm.DB, vault usecases.SecretVault, reg *prometheus.Registry) (*gin.Engine, error) {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	encryption, err := crypto.NewEncryptionService(cfg.Security.EncryptionKey, cfg.Security.HashSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encryption: %w", err)
	}
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	dispatcher := events.NewDispatcher(events.WithMetrics(m))
	dispatcher.SubscribeAll(events.LogHandler())
	if cfg.Events.Publish {
		dispatcher.SubscribeAll(events.NewRedisPublisher(redis.Publish, cfg.Events.Channel).Handle)
	}

	// Repositories
	uow := repositories.NewUnitOfWork(db, dispatcher)
	tenantRepo := repositories.NewTenantRepository(db)
	apiKeyRepo := repositories.NewApiKeyRepository(db)
	terminalRepo := repositories.NewTerminalRepository(db)
	logRepo := repositories.NewTransactionLogRepository(db)

	// Usecases
	cache := secrets.NewCache(cfg.Vault.CacheTTL, m)
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:      cfg.Gateway.BaseURL,
		TransactPath: cfg.Gateway.TransactPath,
		QueryPath:    cfg.Gateway.QueryPath,
		Timeout:      cfg.Gateway.Timeout,
	}, m)

	tenantUsecase := usecases.NewTenantUsecase(tenantRepo, apiKeyRepo, uow, encryption)
	terminalUsecase := usecases.NewTerminalUsecase(terminalRepo, tenantRepo, uow, encryption)
	secretUsecase := usecases.NewSecretUsecase(vault, cache, usecases.NewSecretSyncService(terminalRepo, uow))
	paymentUsecase := usecases.NewPaymentUsecase(tenantRepo, logRepo, uow, encryption, secretUsecase, gatewayClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r, cfg.Server.CORSAllowedOrigins)
	registerSystemRoutes(r, handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"database": postgres.Ping(db),
		"redis":    redis.Ping,
	}), reg)
	registerAPIV1Routes(r, routeDeps{
		tenantHandler:   handlers.NewTenantHandler(tenantUsecase),
		terminalHandler: handlers.NewTerminalHandler(terminalUsecase, secretUsecase),
		secretHandler:   handlers.NewSecretHandler(secretUsecase),
		paymentHandler:  handlers.NewPaymentHandler(paymentUsecase),
		adminAuth:       middleware.AdminAuthMiddleware(jwtService),
		apiKeyAuth:      middleware.ApiKeyAuthMiddleware(tenantUsecase),
		rateLimit: middleware.RateLimitMiddleware(
			middleware.NewKeyedLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst), m),
	})

	return r, nil
}
