package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/preview"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/logger"
)

// DeploymentConfig controls the simulated hosting target.
type DeploymentConfig struct {
	BaseDomain string        // sites are served at <slug>.<BaseDomain>
	Latency    time.Duration // simulated build time
}

type deploymentUsecase struct {
	repo  domain.PortfolioRepository
	store domain.ObjectStore
	cfg   DeploymentConfig
	audit *audit.Logger
	now   func() time.Time
}

func NewDeploymentUsecase(repo domain.PortfolioRepository, store domain.ObjectStore, cfg DeploymentConfig, auditLog *audit.Logger) domain.DeploymentUsecase {
	if cfg.BaseDomain == "" {
		cfg.BaseDomain = "quickfolio.xyz"
	}
	return &deploymentUsecase{
		repo:  repo,
		store: store,
		cfg:   cfg,
		audit: auditLog,
		now:   time.Now,
	}
}

// Deploy renders the portfolio to static HTML, uploads it and marks the
// portfolio published. Hosting is simulated: the URL is derived, nothing is
// provisioned.
func (u *deploymentUsecase) Deploy(ctx context.Context, userID, portfolioID string) (*domain.Deployment, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "deploy your own portfolios")
	if err != nil {
		return nil, err
	}

	page, err := preview.RenderHTML(p.TemplateID, p.Content, p.Customization)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to build portfolio", err)
	}

	if u.cfg.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, apperror.New(http.StatusRequestTimeout, "Deployment cancelled", ctx.Err())
		case <-time.After(u.cfg.Latency):
		}
	}

	key := fmt.Sprintf("sites/%s/index.html", p.Slug)
	if _, err := u.store.Put(ctx, key, "text/html; charset=utf-8", page); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to upload portfolio", err)
	}

	if !p.Published {
		if err := u.repo.SetPublished(ctx, p.ID, true); err != nil {
			return nil, apperror.New(http.StatusInternalServerError, "Failed to publish portfolio", err)
		}
	}

	now := u.now().UTC()
	d := &domain.Deployment{
		ID:          fmt.Sprintf("deploy_%d", now.UnixMilli()),
		PortfolioID: p.ID,
		URL:         fmt.Sprintf("%s.%s", p.Slug, u.cfg.BaseDomain),
		Status:      domain.DeploymentCompleted,
		CreatedAt:   now,
	}

	logger.Log.Info("portfolio deployed", "portfolio_id", p.ID, "deployment_id", d.ID, "url", d.URL)
	u.audit.Record(ctx, audit.ActionDeployed, userID, p.ID, map[string]any{"deployment_id": d.ID, "url": d.URL})
	return d, nil
}
