package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/audit"
)

type customizationUsecase struct {
	repo     domain.PortfolioRepository
	validate *validator.Validate
	audit    *audit.Logger
}

func NewCustomizationUsecase(repo domain.PortfolioRepository, validate *validator.Validate, auditLog *audit.Logger) domain.CustomizationUsecase {
	return &customizationUsecase{repo: repo, validate: validate, audit: auditLog}
}

// Get returns the saved settings, or the defaults for a portfolio that was
// never customized.
func (u *customizationUsecase) Get(ctx context.Context, userID, portfolioID string) (*domain.CustomizationSettings, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "view your own portfolios")
	if err != nil {
		return nil, err
	}
	if p.Customization == nil {
		defaults := domain.DefaultCustomization()
		return &defaults, nil
	}
	settings := *p.Customization
	return &settings, nil
}

func (u *customizationUsecase) Update(ctx context.Context, userID, portfolioID string, settings *domain.CustomizationSettings) (*domain.CustomizationSettings, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "edit your own portfolios")
	if err != nil {
		return nil, err
	}

	next := *settings
	next.Colors.Primary = strings.ToLower(strings.TrimSpace(next.Colors.Primary))
	next.Colors.Background = strings.ToLower(strings.TrimSpace(next.Colors.Background))
	next.Colors.Text = strings.ToLower(strings.TrimSpace(next.Colors.Text))
	next.Colors.Accent = strings.ToLower(strings.TrimSpace(next.Colors.Accent))

	if err := u.validate.Struct(next); err != nil {
		return nil, validationFailed(err)
	}

	if err := u.repo.SetCustomization(ctx, p.ID, &next); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to save customization", err)
	}

	u.audit.Record(ctx, audit.ActionPortfolioUpdated, userID, p.ID, map[string]any{"section": "customization"})
	return &next, nil
}

// Reset clears the saved settings so the portfolio falls back to defaults.
func (u *customizationUsecase) Reset(ctx context.Context, userID, portfolioID string) (*domain.CustomizationSettings, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "edit your own portfolios")
	if err != nil {
		return nil, err
	}

	if err := u.repo.SetCustomization(ctx, p.ID, nil); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to reset customization", err)
	}

	defaults := domain.DefaultCustomization()
	return &defaults, nil
}
