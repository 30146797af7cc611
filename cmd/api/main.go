package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teenpay-backend/config"
	httpHandler "teenpay-backend/internal/adapter/http/handler"
	pgStorage "teenpay-backend/internal/adapter/storage/postgres"
	redisStorage "teenpay-backend/internal/adapter/storage/redis"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/internal/service"
	"teenpay-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting TeenPay backend")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	txnRepo := pgStorage.NewTransactionRepo(pool)
	receiptRepo := pgStorage.NewReceiptRepo(pool)
	topupRepo := pgStorage.NewTopUpRepo(pool)
	refreshTokenRepo := pgStorage.NewRefreshTokenRepo(pool)
	schoolRepo := pgStorage.NewSchoolRepo(pool)
	familyRepo := pgStorage.NewFamilyRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize business services
	ledgerSvc := service.NewLedgerService(userRepo, txnRepo, receiptRepo, transactor, log)
	authSvc := service.NewAuthService(userRepo, refreshTokenRepo, hashSvc, tokenSvc, transactor, cfg.Session.RefreshExpiry, log)
	paymentSvc := service.NewPaymentService(userRepo, schoolRepo, ledgerSvc, log)
	topupSvc := service.NewTopUpService(topupRepo, userRepo, familyRepo, ledgerSvc, transactor, log)
	reportingSvc := service.NewReportingService(userRepo, txnRepo, receiptRepo, schoolRepo)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize rate limit store and health checkers
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PaymentSvc:     paymentSvc,
		TopUpSvc:       topupSvc,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		AuditSvc:       auditSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
