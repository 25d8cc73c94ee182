package usecase

import (
	"context"
	"fmt"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/logger"
)

// portfolioPublisher is the wizard's submit collaborator: it persists the
// record and, for publish intent only, deploys it.
type portfolioPublisher struct {
	portfolios  domain.PortfolioUsecase
	deployments domain.DeploymentUsecase
	audit       *audit.Logger
}

func NewPortfolioPublisher(portfolios domain.PortfolioUsecase, deployments domain.DeploymentUsecase, auditLog *audit.Logger) domain.Publisher {
	return &portfolioPublisher{portfolios: portfolios, deployments: deployments, audit: auditLog}
}

func (p *portfolioPublisher) Publish(ctx context.Context, userID string, record domain.ContentRecord, intent domain.SubmitIntent) (*domain.PublishResult, error) {
	// Created unpublished; Deploy flips the flag once the site is up.
	created, err := p.portfolios.Create(ctx, userID, record, false)
	if err != nil {
		return nil, err
	}

	result := &domain.PublishResult{
		PortfolioID: created.ID,
		Slug:        created.Slug,
	}
	if intent == domain.IntentDraft {
		p.audit.Record(ctx, audit.ActionDraftSaved, userID, created.ID, nil)
		return result, nil
	}

	deployment, err := p.deployments.Deploy(ctx, userID, created.ID)
	if err != nil {
		// Roll back so a retry does not leave a stray draft behind.
		if delErr := p.portfolios.Delete(context.WithoutCancel(ctx), userID, created.ID); delErr != nil {
			logger.Log.Error("failed to roll back portfolio after deploy failure",
				"portfolio_id", created.ID, "error", delErr)
		}
		return nil, fmt.Errorf("deploy portfolio: %w", err)
	}

	result.Published = true
	result.URL = deployment.URL
	result.DeploymentID = deployment.ID
	p.audit.Record(ctx, audit.ActionPortfolioPublished, userID, created.ID, map[string]any{"url": deployment.URL})
	return result, nil
}
