package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymdesk/membership-app/internal/api"
	"gymdesk/membership-app/internal/auth"
	"gymdesk/membership-app/internal/cache"
	"gymdesk/membership-app/internal/config"
	"gymdesk/membership-app/internal/logger"
	"gymdesk/membership-app/internal/metrics"
	"gymdesk/membership-app/internal/repository/mongo"
	"gymdesk/membership-app/internal/repository/rest"
	"gymdesk/membership-app/internal/scheduler"
	"gymdesk/membership-app/internal/service"
	"gymdesk/membership-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

// @title Gym Membership Console API
// @version 1.0
// @description Front-desk console for gym members: clients, payments, renewals, maintenance fees, measurements and statistics.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name gym_session
func main() {
	ctx := context.Background()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.New(logger.Options{ServiceName: "membership-console"}).Error(ctx, "could not load config", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "membership-console",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
		ErrorStack:  true,
	})
	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "invalid configuration", err)
		os.Exit(1)
	}
	log.Info(ctx, "configuration loaded")

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Error(ctx, "could not connect to MongoDB", err)
		os.Exit(1)
	}
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info(ctx, "database connection established")

	indexCtx, cancelIndexes := context.WithTimeout(ctx, time.Minute)
	if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
		log.Warn(ctx, "failed to ensure indexes", err)
	}
	cancelIndexes()

	// --- Statistics cache ---
	// Dashboards still work without Redis; they just lose the cached fallback.
	var snapshots service.SnapshotCache
	var snapshotStore *cache.SnapshotStore
	snapshotStore, err = cache.New(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		URL:      cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.StatsTTL,
	})
	if err != nil {
		log.Warn(ctx, "redis unavailable, statistics will not be cached", err)
	} else {
		snapshots = snapshotStore
	}

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, log)
	if err != nil {
		log.Error(ctx, "failed to initialize S3 storage", err)
		os.Exit(1)
	}

	// --- Initialize Repositories ---
	backend := rest.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log, rest.WithObserver(appMetrics))
	clientRepo := rest.NewClientRepository(backend)
	planRepo := rest.NewPlanRepository(backend)
	paymentRepo := rest.NewPaymentRepository(backend)
	feeRepo := rest.NewFeeRepository(backend)
	measurementRepo := rest.NewMeasurementRepository(backend)
	statsRepo := rest.NewStatsRepository(backend)
	whatsAppRepo := rest.NewWhatsAppRepository(backend)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	statementRepo := mongo.NewMongoStatementRepository(appDB)

	// --- Initialize Services ---
	provider := auth.NewProvider(auth.ProviderConfig{
		Domain:       cfg.Auth.Domain,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		CallbackURL:  cfg.Auth.CallbackURL,
	})
	signer := auth.NewCookieSigner(cfg.Auth.SessionSecret)
	sealer := auth.NewSealer(cfg.Auth.SessionSecret)

	feeService := service.NewFeeService(feeRepo)
	clientService := service.NewClientService(clientRepo, planRepo, paymentRepo, feeRepo, measurementRepo)
	dashboardService := service.NewDashboardService(statsRepo, snapshots, appMetrics, log)
	sessionService := service.NewSessionService(sessionRepo, provider, sealer, cfg.Auth.SessionTTL, cfg.Auth.PostLoginPath, cfg.Server.PublicURL)
	services := api.Services{
		Clients:      clientService,
		Plans:        service.NewPlanService(planRepo),
		Payments:     service.NewPaymentService(paymentRepo, clientRepo, planRepo, feeRepo),
		Renewals:     service.NewRenewalService(clientRepo, paymentRepo, feeRepo, planRepo, feeService, clientService, log),
		Fees:         feeService,
		Measurements: service.NewMeasurementService(measurementRepo, clientRepo),
		Dashboard:    dashboardService,
		WhatsApp:     service.NewWhatsAppService(whatsAppRepo, log),
		Statements:   service.NewStatementService(paymentRepo, statementRepo, fileStorage, log),
		Sessions:     sessionService,
	}

	// --- Scheduler ---
	jobs := scheduler.NewJobs(dashboardService, sessionService, appMetrics, log)
	cronScheduler := scheduler.New(jobs, log, scheduler.Schedules{
		StatsRefresh: cfg.Scheduler.StatsRefreshSchedule,
		SessionPurge: cfg.Scheduler.SessionPurgeSchedule,
	})
	if err := cronScheduler.Start(); err != nil {
		log.Warn(ctx, "some jobs could not be scheduled", err)
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(api.RequestLogger(log), gin.Recovery())

	api.SetupRoutes(router, services, api.RouteOptions{
		Signer:         signer,
		SecureCookies:  cfg.Server.CookieSecure,
		PostLoginPath:  cfg.Auth.PostLoginPath,
		MetricsHandler: metrics.Handler(registry),
	}, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(log.WithField(ctx, "address", cfg.Server.Address), "server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info(ctx, "shutting down server")
	case err := <-serverErr:
		log.Error(ctx, "server stopped unexpectedly", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, shutdownTimeout)
	defer cancelShutdown()

	var shutdownErr error
	multierr.AppendInto(&shutdownErr, server.Shutdown(shutdownCtx))
	select {
	case <-cronScheduler.Stop().Done():
	case <-shutdownCtx.Done():
		multierr.AppendInto(&shutdownErr, errors.New("scheduled jobs did not finish in time"))
	}
	if snapshotStore != nil {
		multierr.AppendInto(&shutdownErr, snapshotStore.Close())
	}
	multierr.AppendInto(&shutdownErr, mongo.DisconnectDB(dbClient))

	if shutdownErr != nil {
		log.Error(ctx, "unclean shutdown", shutdownErr)
		os.Exit(1)
	}
	log.Info(ctx, "server exited")
}
