package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/audit"
)

const maxSlugAttempts = 20

type portfolioUsecase struct {
	repo     domain.PortfolioRepository
	catalog  domain.TemplateCatalog
	validate *validator.Validate
	audit    *audit.Logger
}

func NewPortfolioUsecase(repo domain.PortfolioRepository, catalog domain.TemplateCatalog, validate *validator.Validate, auditLog *audit.Logger) domain.PortfolioUsecase {
	return &portfolioUsecase{
		repo:     repo,
		catalog:  catalog,
		validate: validate,
		audit:    auditLog,
	}
}

// ============================================================================
// Dashboard
// ============================================================================

func (u *portfolioUsecase) List(ctx context.Context, userID string) ([]domain.Portfolio, error) {
	if err := requireUser(ctx, userID, "list your own portfolios"); err != nil {
		return nil, err
	}

	portfolios, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load portfolios", err)
	}
	if portfolios == nil {
		portfolios = []domain.Portfolio{}
	}
	return portfolios, nil
}

func (u *portfolioUsecase) Get(ctx context.Context, userID, id string) (*domain.Portfolio, error) {
	return loadOwnedPortfolio(ctx, u.repo, userID, id, "view your own portfolios")
}

// ============================================================================
// Create (wizard handoff)
// ============================================================================

func (u *portfolioUsecase) Create(ctx context.Context, userID string, record domain.ContentRecord, published bool) (*domain.Portfolio, error) {
	if err := requireUser(ctx, userID, "create portfolios for yourself"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(record.Name)
	if name == "" {
		return nil, apperror.BadRequest("Portfolio name is required")
	}
	if !domain.Profession(record.Profession).IsValid() {
		return nil, apperror.BadRequest("Invalid profession: " + record.Profession)
	}
	if !u.catalog.Contains(record.TemplateID) {
		return nil, apperror.BadRequest("Unknown template: " + record.TemplateID)
	}

	s, err := u.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Portfolio{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: optionalString(record.Description),
		TemplateID:  record.TemplateID,
		Published:   published,
		Slug:        s,
		Content:     record,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.repo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("A portfolio with this address already exists")
		}
		return nil, apperror.New(http.StatusInternalServerError, "Failed to save portfolio", err)
	}

	u.audit.Record(ctx, audit.ActionPortfolioCreated, userID, p.ID, map[string]any{
		"template_id": p.TemplateID,
		"slug":        p.Slug,
		"published":   published,
	})

	return p, nil
}

// uniqueSlug derives a URL slug from the name, suffixing -2, -3... on
// collision and falling back to a random suffix.
func (u *portfolioUsecase) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "portfolio"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := u.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", apperror.New(http.StatusInternalServerError, "Failed to check portfolio address", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

// ============================================================================
// Update / Delete
// ============================================================================

func (u *portfolioUsecase) Update(ctx context.Context, userID, id string, upd *domain.PortfolioUpdate) (*domain.Portfolio, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, id, "edit your own portfolios")
	if err != nil {
		return nil, err
	}

	if err := u.validate.Struct(upd); err != nil {
		return nil, validationFailed(err)
	}
	previousName := p.Name

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperror.BadRequest("Portfolio name is required")
		}
		p.Name = name
		p.Content.Name = name
	}
	if upd.Description != nil {
		p.Description = optionalString(*upd.Description)
		p.Content.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.TemplateID != nil {
		if !u.catalog.Contains(*upd.TemplateID) {
			return nil, apperror.BadRequest("Unknown template: " + *upd.TemplateID)
		}
		p.TemplateID = *upd.TemplateID
		p.Content.TemplateID = *upd.TemplateID
	}
	if upd.Slug != nil && *upd.Slug != p.Slug {
		exists, err := u.repo.SlugExists(ctx, *upd.Slug)
		if err != nil {
			return nil, apperror.New(http.StatusInternalServerError, "Failed to check portfolio address", err)
		}
		if exists {
			return nil, apperror.Conflict("This address is already taken")
		}
		p.Slug = *upd.Slug
	}
	if upd.Content != nil {
		if !validProfessionPatch(upd.Content) {
			return nil, apperror.BadRequest("Invalid profession: " + *upd.Content.Profession)
		}
		upd.Content.Apply(&p.Content)
		if upd.Content.Name != nil {
			p.Name = strings.TrimSpace(p.Content.Name)
		}
		if upd.Content.Description != nil {
			p.Description = optionalString(p.Content.Description)
		}
		if p.Name == "" {
			return nil, apperror.BadRequest("Portfolio name is required")
		}
	}
	// A rename moves the address too, unless the caller picked one.
	if upd.Slug == nil && p.Name != previousName && slug.Make(p.Name) != p.Slug {
		next, err := u.uniqueSlug(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		p.Slug = next
	}
	p.UpdatedAt = time.Now().UTC()

	if err := u.repo.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("This address is already taken")
		}
		return nil, apperror.New(http.StatusInternalServerError, "Failed to update portfolio", err)
	}

	u.audit.Record(ctx, audit.ActionPortfolioUpdated, userID, p.ID, nil)
	return p, nil
}

func (u *portfolioUsecase) Delete(ctx context.Context, userID, id string) error {
	if _, err := loadOwnedPortfolio(ctx, u.repo, userID, id, "delete your own portfolios"); err != nil {
		return err
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Portfolio not found")
		}
		return apperror.New(http.StatusInternalServerError, "Failed to delete portfolio", err)
	}

	u.audit.Record(ctx, audit.ActionPortfolioDeleted, userID, id, nil)
	return nil
}

// validProfessionPatch rejects clearing the profession of a saved portfolio.
func validProfessionPatch(patch *domain.ContentPatch) bool {
	return patch.Profession == nil || domain.Profession(*patch.Profession).IsValid()
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
