package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"quickfolio-backend/internal/domain"
)

type portfolioRepo struct {
	db *pgxpool.Pool
}

func NewPortfolioRepository(db *pgxpool.Pool) domain.PortfolioRepository {
	return &portfolioRepo{db: db}
}

const portfolioColumns = `
	id, user_id, name, description, template_id, published, slug,
	content, custom_domain,
	seo_title, seo_description, seo_keywords, seo_og_image,
	customization, created_at, updated_at`

// scanPortfolio reads one row selected with portfolioColumns. JSONB columns
// come back as text; SEO is nil until seo_title has been written once.
func scanPortfolio(row pgx.Row) (*domain.Portfolio, error) {
	var (
		p             domain.Portfolio
		content       []byte
		customization []byte
		seoTitle      *string
		seoDesc       *string
		seoKeywords   []string
		seoOGImage    *string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.TemplateID, &p.Published, &p.Slug,
		&content, &p.CustomDomain,
		&seoTitle, &seoDesc, pq.Array(&seoKeywords), &seoOGImage,
		&customization, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(content) > 0 {
		if err := json.Unmarshal(content, &p.Content); err != nil {
			return nil, fmt.Errorf("decode content of portfolio %s: %w", p.ID, err)
		}
	}
	if len(customization) > 0 {
		var cs domain.CustomizationSettings
		if err := json.Unmarshal(customization, &cs); err != nil {
			return nil, fmt.Errorf("decode customization of portfolio %s: %w", p.ID, err)
		}
		p.Customization = &cs
	}
	if seoTitle != nil {
		p.SEO = &domain.SEOSettings{
			Title:    *seoTitle,
			Keywords: seoKeywords,
		}
		if seoDesc != nil {
			p.SEO.Description = *seoDesc
		}
		if seoOGImage != nil {
			p.SEO.OGImage = *seoOGImage
		}
		if p.SEO.Keywords == nil {
			p.SEO.Keywords = []string{}
		}
	}
	return &p, nil
}

func (r *portfolioRepo) getOne(ctx context.Context, where string, arg any) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE ` + where
	p, err := scanPortfolio(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *portfolioRepo) Create(ctx context.Context, p *domain.Portfolio) error {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO portfolios (id, user_id, name, description, template_id, published, slug, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.Description, p.TemplateID, p.Published, p.Slug,
		string(content), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *portfolioRepo) GetByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *portfolioRepo) GetBySlug(ctx context.Context, slug string) (*domain.Portfolio, error) {
	return r.getOne(ctx, `slug = $1`, slug)
}

func (r *portfolioRepo) FindByCustomDomain(ctx context.Context, hostname string) (*domain.Portfolio, error) {
	return r.getOne(ctx, `custom_domain = $1`, hostname)
}

// ListByUser returns the user's portfolios, most recently updated first.
func (r *portfolioRepo) ListByUser(ctx context.Context, userID string) ([]domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	portfolios := []domain.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, *p)
	}
	return portfolios, rows.Err()
}

func (r *portfolioRepo) Update(ctx context.Context, p *domain.Portfolio) error {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return err
	}

	query := `
		UPDATE portfolios
		SET name = $2, description = $3, template_id = $4, slug = $5, content = $6::jsonb, updated_at = $7
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Description, p.TemplateID, p.Slug, string(content), p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *portfolioRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *portfolioRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM portfolios WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *portfolioRepo) SetPublished(ctx context.Context, id string, published bool) error {
	return r.exec(ctx, `UPDATE portfolios SET published = $2, updated_at = $3 WHERE id = $1`, id, published, time.Now().UTC())
}

func (r *portfolioRepo) SetCustomDomain(ctx context.Context, id string, hostname *string) error {
	return r.exec(ctx, `UPDATE portfolios SET custom_domain = $2, updated_at = $3 WHERE id = $1`, id, hostname, time.Now().UTC())
}

func (r *portfolioRepo) SetSEO(ctx context.Context, id string, seo *domain.SEOSettings) error {
	query := `
		UPDATE portfolios
		SET seo_title = $2, seo_description = $3, seo_keywords = $4, seo_og_image = $5, updated_at = $6
		WHERE id = $1`
	return r.exec(ctx, query, id, seo.Title, seo.Description, pq.Array(seo.Keywords), seo.OGImage, time.Now().UTC())
}

// SetCustomization stores the settings as JSONB; nil resets to defaults.
func (r *portfolioRepo) SetCustomization(ctx context.Context, id string, settings *domain.CustomizationSettings) error {
	var payload *string
	if settings != nil {
		b, err := json.Marshal(settings)
		if err != nil {
			return err
		}
		s := string(b)
		payload = &s
	}
	return r.exec(ctx, `UPDATE portfolios SET customization = $2::jsonb, updated_at = $3 WHERE id = $1`, id, payload, time.Now().UTC())
}

func (r *portfolioRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
