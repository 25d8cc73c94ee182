package usecase

import (
	"context"
	"errors"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/validation"
)

// requireUser verifies the authenticated user in ctx is the one the request
// acts for.
func requireUser(ctx context.Context, userID, action string) error {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if ctxUserID != userID {
		return apperror.Forbidden("You can only " + action)
	}
	return nil
}

// loadOwnedPortfolio fetches a portfolio and checks it belongs to userID.
func loadOwnedPortfolio(ctx context.Context, repo domain.PortfolioRepository, userID, portfolioID, action string) (*domain.Portfolio, error) {
	if err := requireUser(ctx, userID, action); err != nil {
		return nil, err
	}

	p, err := repo.GetByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Portfolio not found")
		}
		return nil, apperror.Internal(err)
	}
	if p.UserID != userID {
		return nil, apperror.Forbidden("You can only " + action)
	}
	return p, nil
}

func validationFailed(err error) *apperror.AppError {
	return apperror.BadRequest("Validation failed").WithDetails(validation.FormatValidationErrors(err))
}
