package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"wdmmg/internal/auth"
	"wdmmg/internal/config"
	"wdmmg/internal/database"
	"wdmmg/internal/logger"
	"wdmmg/internal/ratelimit"
	"wdmmg/internal/repository"
	"wdmmg/internal/server"
	"wdmmg/internal/services"
	"wdmmg/internal/validator"
)

// @title           WDMMG API
// @version         1.0
// @description     Where Did My Money Go: a personal finance ledger for tracking spending, budgets and trends.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	db := dbManager.DB()
	limits := ratelimit.LimitsFromConfig(cfg.RateLimits)

	// Redis backs the limiter and refresh store when configured so several
	// API instances share state.
	var (
		limiter      ratelimit.Limiter
		refreshStore auth.RefreshStore
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}

		limiter = ratelimit.NewRedisLimiter(rdb, limits, nil)
		refreshStore = auth.NewRedisRefreshStore(rdb)
		log.Infow("Using Redis for rate limits and refresh tokens", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter(limits, nil)
		refreshStore = auth.NewDBRefreshStore(db)
	}

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	txnRepo := repository.NewTransactionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	userService := services.NewUserService(db)

	router := server.NewRouter(server.Deps{
		Auth:         services.NewAuthService(userService, tokens, refreshStore),
		Users:        userService,
		Transactions: services.NewTransactionService(txnRepo),
		Budgets:      services.NewBudgetService(budgetRepo),
		Stats:        services.NewStatsService(txnRepo, budgetRepo),
		Audit:        services.NewAuditService(db),
		Limiter:      limiter,
		CORSOrigins:  cfg.CORSOrigins,
	})

	log.Infof("Starting WDMMG server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}
