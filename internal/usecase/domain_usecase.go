package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/validation"
)

const defaultCNAMETarget = "quickfolio-domains.vercel.app"

type domainUsecase struct {
	repo        domain.PortfolioRepository
	cnameTarget string
	audit       *audit.Logger
}

func NewDomainUsecase(repo domain.PortfolioRepository, cnameTarget string, auditLog *audit.Logger) domain.DomainUsecase {
	if cnameTarget == "" {
		cnameTarget = defaultCNAMETarget
	}
	return &domainUsecase{repo: repo, cnameTarget: cnameTarget, audit: auditLog}
}

// Add attaches a hostname to the portfolio and returns the DNS records the
// user has to create. Verification itself is simulated.
func (u *domainUsecase) Add(ctx context.Context, userID, portfolioID, hostname string) (*domain.AddDomainResult, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "configure your own portfolios")
	if err != nil {
		return nil, err
	}

	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if !validation.IsDomain(hostname) {
		return nil, apperror.BadRequest("Invalid domain format")
	}

	owner, err := u.repo.FindByCustomDomain(ctx, hostname)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, apperror.New(http.StatusInternalServerError, "Failed to check domain", err)
	case owner.ID != p.ID:
		return nil, apperror.Conflict("Domain is already in use by another portfolio")
	}

	if err := u.repo.SetCustomDomain(ctx, p.ID, &hostname); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("Domain is already in use by another portfolio")
		}
		return nil, apperror.New(http.StatusInternalServerError, "Failed to save domain", err)
	}

	u.audit.Record(ctx, audit.ActionDomainAdded, userID, p.ID, map[string]any{"domain": hostname})

	return &domain.AddDomainResult{
		Domain:  hostname,
		Message: "Domain added successfully. Please configure the following DNS records:",
		Verifications: []domain.DomainVerification{
			{Type: domain.DomainRecordCNAME, Name: hostname, Value: u.cnameTarget},
			{Type: domain.DomainRecordTXT, Name: "_quickfolio-verify." + hostname, Value: fmt.Sprintf("portfolio=%s", p.ID)},
		},
	}, nil
}

func (u *domainUsecase) Status(ctx context.Context, userID, portfolioID string) (*domain.DomainState, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "view your own portfolios")
	if err != nil {
		return nil, err
	}

	if p.CustomDomain == nil || *p.CustomDomain == "" {
		return &domain.DomainState{}, nil
	}
	return &domain.DomainState{
		Domain: p.CustomDomain,
		Status: &domain.DomainStatus{
			Configured: true,
			Status:     "valid",
			Message:    "Domain is properly configured and SSL certificate is active",
		},
	}, nil
}

func (u *domainUsecase) Remove(ctx context.Context, userID, portfolioID string) error {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "configure your own portfolios")
	if err != nil {
		return err
	}
	if p.CustomDomain == nil {
		return nil
	}

	if err := u.repo.SetCustomDomain(ctx, p.ID, nil); err != nil {
		return apperror.New(http.StatusInternalServerError, "Failed to remove domain", err)
	}

	u.audit.Record(ctx, audit.ActionDomainRemoved, userID, p.ID, map[string]any{"domain": *p.CustomDomain})
	return nil
}
