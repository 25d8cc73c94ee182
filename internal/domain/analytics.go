package domain

import (
	"context"
	"time"
)

type AnalyticsEventType string

const (
	EventPageView   AnalyticsEventType = "pageview"
	EventClick      AnalyticsEventType = "click"
	EventScroll     AnalyticsEventType = "scroll"
	EventTimeOnPage AnalyticsEventType = "time_on_page"
	EventCustom     AnalyticsEventType = "custom"
)

type AnalyticsEvent struct {
	PortfolioID string             `json:"portfolio_id" validate:"required,uuid"`
	EventType   AnalyticsEventType `json:"event_type" validate:"required,oneof=pageview click scroll time_on_page custom"`
	Path        string             `json:"path,omitempty" validate:"max=500"`
	Referrer    string             `json:"referrer,omitempty" validate:"max=500"`
	UserAgent   string             `json:"user_agent,omitempty" validate:"max=500"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}

// PortfolioAnalytics is the stored counter row for one portfolio.
type PortfolioAnalytics struct {
	PortfolioID    string    `json:"portfolio_id"`
	PageViews      int       `json:"page_views"`
	UniqueVisitors int       `json:"unique_visitors"`
	AvgTimeOnPage  float64   `json:"avg_time_on_page"`
	BounceRate     float64   `json:"bounce_rate"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ReferrerCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type DeviceBreakdown struct {
	Desktop float64 `json:"desktop"`
	Mobile  float64 `json:"mobile"`
	Tablet  float64 `json:"tablet"`
}

type DailyViews struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

type AnalyticsSummary struct {
	PageViews       int             `json:"page_views"`
	UniqueVisitors  int             `json:"unique_visitors"`
	AvgTimeOnPage   float64         `json:"avg_time_on_page"`
	BounceRate      float64         `json:"bounce_rate"`
	TopReferrers    []ReferrerCount `json:"top_referrers"`
	DeviceBreakdown DeviceBreakdown `json:"device_breakdown"`
	TimeSeries      []DailyViews    `json:"time_series"`
}

type AnalyticsRepository interface {
	Get(ctx context.Context, portfolioID string) (*PortfolioAnalytics, error)
	RecordPageView(ctx context.Context, portfolioID string) error
}

type AnalyticsUsecase interface {
	Track(ctx context.Context, event *AnalyticsEvent) error
	Summary(ctx context.Context, userID, portfolioID string) (*AnalyticsSummary, error)
	// ExportReport renders the summary as "xlsx" (default) or "csv" and
	// returns the file body and a download file name.
	ExportReport(ctx context.Context, userID, portfolioID, format string) ([]byte, string, error)
}
