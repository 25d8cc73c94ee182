package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quickfolio-backend/internal/domain"
)

type analyticsRepo struct {
	db *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) domain.AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) Get(ctx context.Context, portfolioID string) (*domain.PortfolioAnalytics, error) {
	query := `
		SELECT portfolio_id, page_views, unique_visitors, avg_time_on_page, bounce_rate, created_at, updated_at
		FROM analytics
		WHERE portfolio_id = $1`

	var a domain.PortfolioAnalytics
	err := r.db.QueryRow(ctx, query, portfolioID).Scan(
		&a.PortfolioID, &a.PageViews, &a.UniqueVisitors, &a.AvgTimeOnPage, &a.BounceRate, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// RecordPageView increments page_views, creating the row on the first view
// with one page view and one unique visitor.
func (r *analyticsRepo) RecordPageView(ctx context.Context, portfolioID string) error {
	query := `
		INSERT INTO analytics (portfolio_id, page_views, unique_visitors, avg_time_on_page, bounce_rate, created_at, updated_at)
		VALUES ($1, 1, 1, 0, 0, NOW(), NOW())
		ON CONFLICT (portfolio_id)
		DO UPDATE SET page_views = analytics.page_views + 1, updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, portfolioID)
	return err
}
