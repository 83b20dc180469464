package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/api"
	"github.com/jstittsworth/lineup-editor/internal/services"
	"github.com/jstittsworth/lineup-editor/pkg/config"
	"github.com/jstittsworth/lineup-editor/pkg/database"
	"github.com/jstittsworth/lineup-editor/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; without it snapshots are not cached and live state
	// is not mirrored
	var cacheService *services.CacheService
	if cfg.RedisURL != "" {
		redisClient, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, running without cache")
		} else {
			defer redisClient.Close()
			cacheService = services.NewCacheService(redisClient)
		}
	}

	breakers := services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, 30*time.Second, log)

	// SMS
	var smsService services.SMSService
	switch cfg.SMSProvider {
	case "twilio":
		limiter := services.NewSMSRateLimiter(cfg.SMSRateLimit, cfg.SMSRateWindow)
		smsService = services.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, limiter, breakers, log)
	default:
		smsService = services.NewMockSMSService(log)
	}
	notifier := services.NewSubstitutionNotifier(smsService, cfg.NotifyPhoneNumbers, log)
	notifier.Start()
	defer notifier.Stop()

	hub := services.NewHub(log, cfg.CorsOrigins)
	go hub.Run(ctx)

	repo := services.NewTimelineRepository(db)
	sessions := services.NewSessionManager(repo, cacheService, breakers, hub, notifier, services.SessionManagerConfig{
		TickInterval:  cfg.TickInterval,
		IdleTimeout:   cfg.SessionIdleTimeout,
		StateCacheTTL: cfg.StateCacheTTL,
	}, log)

	var evictInterval time.Duration
	if cfg.SessionIdleTimeout > 0 {
		evictInterval = cfg.SessionIdleTimeout / 2
	}
	reaper := services.NewSessionReaper(sessions, log, cfg.AutosaveInterval, evictInterval)
	if err := reaper.Start(); err != nil {
		log.Errorf("Failed to start session reaper: %v", err)
	}
	defer reaper.Stop()

	router := api.NewRouter(api.Dependencies{
		DB:       db,
		Repo:     repo,
		Cache:    cacheService,
		Sessions: sessions,
		Hub:      hub,
		Breakers: breakers,
		Config:   cfg,
		Logger:   log,
	})

	if cfg.IsDevelopment() {
		log.Info("=== REGISTERED ROUTES ===")
		for _, route := range router.Routes() {
			log.Infof("%s %s", route.Method, route.Path)
		}
		log.Info("=========================")
	}

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	// Persist every open editor before the database goes away
	reaper.Stop()
	if err := sessions.CloseAll(shutdownCtx); err != nil {
		log.Errorf("Failed to save sessions on shutdown: %v", err)
	}

	log.Info("Server exited")
}
