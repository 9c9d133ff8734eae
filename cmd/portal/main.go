// Package main initializes and starts the candidate portal server,
// setting up configuration, logging, database connections, the hosted
// auth provider client, repositories, services and HTTP handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/Rustix69/QuantInsiderHirrd/internal/auth"
	"github.com/Rustix69/QuantInsiderHirrd/internal/cache"
	"github.com/Rustix69/QuantInsiderHirrd/internal/config"
	"github.com/Rustix69/QuantInsiderHirrd/internal/db"
	"github.com/Rustix69/QuantInsiderHirrd/internal/events"
	"github.com/Rustix69/QuantInsiderHirrd/internal/logger"
	"github.com/Rustix69/QuantInsiderHirrd/internal/metrics"
	"github.com/Rustix69/QuantInsiderHirrd/internal/middleware"
	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
	"github.com/Rustix69/QuantInsiderHirrd/internal/notify"
	"github.com/Rustix69/QuantInsiderHirrd/internal/profile"
	"github.com/Rustix69/QuantInsiderHirrd/internal/provider"
	"github.com/Rustix69/QuantInsiderHirrd/internal/repository"
	"github.com/Rustix69/QuantInsiderHirrd/internal/resume"
	"github.com/Rustix69/QuantInsiderHirrd/internal/server/handler/http"
	"github.com/Rustix69/QuantInsiderHirrd/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and apply migrations.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	if err := db.RunMigrations(options.DatabaseDSN); err != nil {
		zapLogger.Fatal("cannot run migrations", zap.Error(err))
	}

	// Initialize repositories.
	profileRepo := repository.NewPostgresProfileRepository(postgresDB)
	resumeRepo := repository.NewPostgresResumeRepository(postgresDB)

	// Hosted auth provider client plus the background session watcher
	// that surfaces externally revoked or created sessions.
	authProvider := provider.NewClient(options.AuthBaseURL, options.AuthAPIKey)
	provider.StartSessionWatcher(ctx, authProvider, authProvider, options.WatchInterval, zapLogger)

	// Session state, durable identity cache, notifications, counters.
	store := session.NewStore()
	identityCache := cache.New(options.CacheFile)
	feed := notify.NewFeed(zapLogger, 50)
	collector := metrics.NewCollector()

	// Event publishing is optional; without a broker the portal runs
	// with a no-op publisher.
	var publisher events.Publisher = events.NopPublisher{}
	if options.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(options.AMQPURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("cannot connect to broker", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	// Auth lifecycle controller; restore any previous session before
	// serving requests.
	controller := auth.NewController(auth.Config{
		Provider:    authProvider,
		Store:       store,
		Cache:       identityCache,
		Notifier:    feed,
		Metrics:     collector,
		AdminEmails: options.AdminEmails,
		Logger:      zapLogger,
	})
	defer controller.Close()
	controller.Restore(ctx)

	// Resume storage; without a bucket uploads are disabled.
	var resumeService *resume.Service
	if options.S3Bucket != "" {
		s3Client, err := resume.NewS3Client(ctx, resume.S3Config{
			Bucket:    options.S3Bucket,
			Region:    options.S3Region,
			Endpoint:  options.S3Endpoint,
			AccessKey: options.S3AccessKey,
			SecretKey: options.S3SecretKey,
		})
		if err != nil {
			zapLogger.Fatal("cannot init object storage", zap.Error(err))
		}
		resumeService = resume.NewService(resume.Config{
			Store:   resumeRepo,
			Storage: s3Client,
			Bucket:  options.S3Bucket,
			Events:  publisher,
			Metrics: collector,
			Logger:  zapLogger,
		})
	} else {
		zapLogger.Warn("no resume bucket configured, uploads disabled")
		resumeService = resume.NewService(resume.Config{
			Store:   resumeRepo,
			Storage: nil,
			Bucket:  "",
			Events:  publisher,
			Metrics: collector,
			Logger:  zapLogger,
		})
	}

	// Login throttling.
	loginLimiter := middleware.NewLoginLimiter(middleware.DefaultLoginLimiterConfig(), zapLogger)
	defer loginLimiter.Stop()

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{Controller: controller, Store: store}
	profileHandler := &http.ProfileHandler{
		New: func(identity models.Identity) http.ProfileReconciler {
			return profile.NewReconciler(profile.Config{
				Store:    profileRepo,
				Notifier: feed,
				Events:   publisher,
				Metrics:  collector,
				Logger:   zapLogger,
			}, identity)
		},
	}
	resumeHandler := &http.ResumeHandler{Service: resumeService}
	adminHandler := &http.AdminHandler{Candidates: profileRepo}
	notificationHandler := &http.NotificationHandler{Feed: feed}
	webhookHandler := &http.WebhookHandler{Dispatcher: authProvider, Secret: options.WebhookSecret}

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterConfig{
		Auth:          authHandler,
		Profile:       profileHandler,
		Resume:        resumeHandler,
		Admin:         adminHandler,
		Notifications: notificationHandler,
		Webhook:       webhookHandler,
		Store:         store,
		LoginLimiter:  loginLimiter,
		Metrics:       collector.Handler(),
		Logger:        zapLogger,
	})

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	go func() {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		if err := server.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			zapLogger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
