package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/api"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/api/middleware"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/config"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/repository/sqldb"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting storefront session server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("db_driver", cfg.Database.Driver),
	)

	keys := middleware.TokenKeys{Secret: cfg.Auth.JWTSecret, PublicKeyPEM: cfg.Auth.JWTPublicKey}
	if err := keys.Validate(); err != nil {
		logger.Fatal("Invalid token verification key", zap.Error(err))
	}

	// Initialize database
	db, err := sqldb.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := sqldb.RunMigrations(context.Background(), db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := sqldb.NewRepositories(db, logger)

	backend := gateway.NewClient(
		cfg.Backend.BaseURL,
		gateway.ContextToken{Fallback: gateway.StaticToken(cfg.Backend.Token)},
		cfg.Backend.Timeout,
		logger,
	)

	sessions := session.NewManager(session.Options{
		Backend: backend,
		Repo:    repos.Session,
		Policy: pricing.StaticPolicy{
			TaxPercent:            cfg.Pricing.TaxPercent,
			ShippingFlatFee:       cfg.Pricing.ShippingFlatFee,
			FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		},
		CouponDebounce: cfg.Session.CouponDebounce,
		PageLimit:      cfg.Session.PageLimit,
		Logger:         logger,
	})

	// Initialize router
	router := api.NewRouter(cfg, sessions, backend, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Stop debounce timers and write the last cart snapshots
	sessions.Close()

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
