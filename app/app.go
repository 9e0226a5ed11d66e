// File: app/app.go
package app

import (
	"context"
	"lead-crm-api/config"
	"lead-crm-api/db"
	"lead-crm-api/handler"
	"lead-crm-api/logger"
	"lead-crm-api/metrics"
	"lead-crm-api/repository"
	"lead-crm-api/router"
	"lead-crm-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Interval of the background sweep that reclaims expired and revoked
// refresh-token rows.
const tokenSweepInterval = 24 * time.Hour

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		// The lead cache is an optimization; the API stays up without it.
		logger.Log.WithError(err).Warn("Redis unavailable, continuing without lead cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	collector := metrics.NewCollector(prometheus.NewRegistry())

	// --- Wiring All Layers Together ---

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	leadRepo := repository.NewLeadRepository(database)
	customerRepo := repository.NewCustomerRepository(database)

	codec := service.NewTokenCodec(config.AppConfig.JWT.AccessSecret, config.AppConfig.JWT.RefreshSecret)
	mailer := service.NewSMTPMailer()

	authService := service.NewAuthService(userRepo, tokenRepo, codec, mailer, collector)
	leadService := service.NewLeadService(database, leadRepo, customerRepo, redisClient)
	customerService := service.NewCustomerService(customerRepo)

	authHandler := handler.NewAuthHandler(authService)
	googleHandler := handler.NewGoogleHandler(authService)
	leadHandler := handler.NewLeadHandler(leadService)
	customerHandler := handler.NewCustomerHandler(customerService)

	rateLimiter := handler.NewCredentialRateLimiter()
	defer rateLimiter.Stop()

	r := router.NewRouter(authHandler, googleHandler, leadHandler, customerHandler,
		codec, rateLimiter, collector.Handler())

	// --- Background Token Sweep ---
	sweepStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(tokenSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := authService.SweepExpiredTokens(); err != nil {
					logger.Log.WithError(err).Error("Token sweep failed")
				}
			case <-sweepStop:
				return
			}
		}
	}()

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	close(sweepStop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
