package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"quickfolio-backend/config"
	_ "quickfolio-backend/docs" // Important for Swagger
	"quickfolio-backend/internal/catalog"
	v1 "quickfolio-backend/internal/delivery/http/v1"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/generator"
	"quickfolio-backend/internal/notify"
	"quickfolio-backend/internal/repository/postgres"
	"quickfolio-backend/internal/repository/session"
	"quickfolio-backend/internal/usecase"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/auth"
	"quickfolio-backend/pkg/database"
	"quickfolio-backend/pkg/logger"
	"quickfolio-backend/pkg/objectstore"
	"quickfolio-backend/pkg/redis"
	"quickfolio-backend/pkg/validation"
)

// @title           Quickfolio API
// @version         1.0
// @description     Portfolio builder backend: wizard, preview rendering, publishing and analytics.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting quickfolio backend", "port", cfg.Port, "env", cfg.AppEnv)

	auditLog := audit.New(cfg.AppEnv)
	audit.SetDefault(auditLog)
	defer auditLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, database.PoolOptions{})
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	var sessions domain.WizardSessionStore
	redisProbe := usecase.Probe(nil)
	err = redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
	switch {
	case err == nil:
		sessions = session.NewRedisStore(redis.Client(), cfg.WizardSessionTTL)
		redisProbe = redis.HealthCheck
		defer redis.Close()
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Log.Warn("Redis not configured, wizard sessions kept in memory")
	default:
		logger.Log.Error("Redis unavailable, wizard sessions kept in memory", "error", err)
	}
	if sessions == nil {
		mem := session.NewMemoryStore(cfg.WizardSessionTTL)
		go sweepSessions(ctx, mem, cfg.WizardSessionTTL)
		sessions = mem
	}

	// 5. Setup Object Storage
	var store domain.ObjectStore
	s3Probe := usecase.Probe(nil)
	s3Cfg := objectstore.S3Config{
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PresignTTL:      cfg.S3PresignTTL,
		PublicBaseURL:   cfg.S3PublicURL,
	}
	if s3Cfg.Enabled() {
		s3Store, err := objectstore.NewS3Store(ctx, s3Cfg)
		if err != nil {
			logger.Log.Error("Failed to configure object storage", "error", err)
			os.Exit(1)
		}
		store = s3Store
		s3Probe = s3Store.Ping
	} else {
		logger.Log.Warn("S3 not configured, exports and images kept in memory")
		store = objectstore.NewMemoryStore("")
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	portfolioRepo := postgres.NewPortfolioRepository(dbPool)
	analyticsRepo := postgres.NewAnalyticsRepository(dbPool)

	// 7. Setup UseCases
	validate := validation.New()
	templates := catalog.Default()
	hub := notify.NewHub()
	defer hub.Close()

	authUC := usecase.NewAuthUsecase(userRepo)
	portfolioUC := usecase.NewPortfolioUsecase(portfolioRepo, templates, validate, auditLog)
	deploymentUC := usecase.NewDeploymentUsecase(portfolioRepo, store, usecase.DeploymentConfig{
		BaseDomain: cfg.DeployBaseDomain,
		Latency:    cfg.DeployLatency,
	}, auditLog)
	publisher := usecase.NewPortfolioPublisher(portfolioUC, deploymentUC, auditLog)
	wizardUC := usecase.NewWizardUsecase(
		sessions,
		templates,
		generator.NewSimulated(cfg.GenerateLatency),
		publisher,
		hub,
		validate,
		usecase.WizardConfig{SessionTTL: cfg.WizardSessionTTL},
		auditLog,
	)
	healthUC := usecase.NewHealthUsecase(map[string]usecase.Probe{
		"database": dbPool.Ping,
		"redis":    redisProbe,
		"storage":  s3Probe,
	})

	// 8. Setup Auth Provider (JWKS)
	var jwksProvider *auth.Provider
	if cfg.SupabaseUrl != "" {
		jwksProvider = auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:          authUC,
		WizardUC:        wizardUC,
		PortfolioUC:     portfolioUC,
		DeploymentUC:    deploymentUC,
		DomainUC:        usecase.NewDomainUsecase(portfolioRepo, cfg.DomainCNAMETarget, auditLog),
		SEOUC:           usecase.NewSEOUsecase(portfolioRepo, store, validate),
		CustomizationUC: usecase.NewCustomizationUsecase(portfolioRepo, validate, auditLog),
		ExportUC:        usecase.NewExportUsecase(portfolioRepo, store, validate, auditLog),
		AnalyticsUC:     usecase.NewAnalyticsUsecase(analyticsRepo, portfolioRepo, validate),
		TemplateUC:      usecase.NewTemplateUsecase(templates),
		HealthUC:        healthUC,
		Hub:             hub,
		JWKSProvider:    jwksProvider,
		Config:          cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// sweepSessions drops expired in-memory wizard sessions; Redis expires its
// own keys.
func sweepSessions(ctx context.Context, store *session.MemoryStore, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logger.Log.Debug("swept expired wizard sessions", "count", n)
			}
		}
	}
}
