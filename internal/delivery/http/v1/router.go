package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"quickfolio-backend/config"
	"quickfolio-backend/internal/delivery/http/middleware"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/notify"
	"quickfolio-backend/internal/usecase"
	"quickfolio-backend/pkg/auth"
)

type RouterDeps struct {
	AuthUC          domain.AuthUsecase
	WizardUC        domain.WizardUsecase
	PortfolioUC     domain.PortfolioUsecase
	DeploymentUC    domain.DeploymentUsecase
	DomainUC        domain.DomainUsecase
	SEOUC           domain.SEOUsecase
	CustomizationUC domain.CustomizationUsecase
	ExportUC        domain.ExportUsecase
	AnalyticsUC     domain.AnalyticsUsecase
	TemplateUC      domain.TemplateUsecase
	HealthUC        usecase.HealthUsecase
	Hub             *notify.Hub
	JWKSProvider    *auth.Provider
	Config          *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		FrontendURL: cfg.FrontendURL,
		Production:  cfg.IsProduction(),
	})) // CORS must be first
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.FrontendURL))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitEnabled {
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	}

	v1 := r.Group("/v1")

	if deps.HealthUC != nil {
		NewHealthHandler(v1, deps.HealthUC)
	}
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	NewTemplateHandler(v1, deps.TemplateUC)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, cfg, deps.AuthUC))
	{
		NewAuthHandler(protected, deps.AuthUC)
		NewWizardHandler(protected, deps.WizardUC, deps.Hub, cfg.FrontendURL)
		NewPortfolioHandler(protected, deps.PortfolioUC)
		NewSettingsHandler(protected, deps.DomainUC, deps.SEOUC, deps.CustomizationUC)
		NewPublishingHandler(v1, protected, deps.DeploymentUC, deps.ExportUC)
		NewAnalyticsHandler(v1, protected, deps.AnalyticsUC)
	}

	return r
}
