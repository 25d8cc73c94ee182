package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/logger"
)

const timeSeriesDays = 30

// Referrer and device splits are estimated from the page view total until
// per-event storage exists.
var referrerShares = []struct {
	source string
	share  int // percent
}{
	{"Google", 40},
	{"Direct", 30},
	{"Twitter", 20},
	{"LinkedIn", 10},
}

var defaultDevices = domain.DeviceBreakdown{Desktop: 0.65, Mobile: 0.3, Tablet: 0.05}

type analyticsUsecase struct {
	analytics  domain.AnalyticsRepository
	portfolios domain.PortfolioRepository
	validate   *validator.Validate
	now        func() time.Time
}

func NewAnalyticsUsecase(analytics domain.AnalyticsRepository, portfolios domain.PortfolioRepository, validate *validator.Validate) domain.AnalyticsUsecase {
	return &analyticsUsecase{
		analytics:  analytics,
		portfolios: portfolios,
		validate:   validate,
		now:        time.Now,
	}
}

// Track records a visitor event. Only page views update counters; other
// event types are accepted and logged.
func (u *analyticsUsecase) Track(ctx context.Context, event *domain.AnalyticsEvent) error {
	if err := u.validate.Struct(event); err != nil {
		return validationFailed(err)
	}

	if _, err := u.portfolios.GetByID(ctx, event.PortfolioID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Portfolio not found")
		}
		return apperror.Internal(err)
	}

	if event.EventType != domain.EventPageView {
		logger.Log.Debug("analytics event", "portfolio_id", event.PortfolioID, "type", event.EventType, "path", event.Path)
		return nil
	}

	if err := u.analytics.RecordPageView(ctx, event.PortfolioID); err != nil {
		return apperror.New(http.StatusInternalServerError, "Failed to record page view", err)
	}
	return nil
}

func (u *analyticsUsecase) Summary(ctx context.Context, userID, portfolioID string) (*domain.AnalyticsSummary, error) {
	if _, err := loadOwnedPortfolio(ctx, u.portfolios, userID, portfolioID, "view analytics for your own portfolios"); err != nil {
		return nil, err
	}

	row, err := u.analytics.Get(ctx, portfolioID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.New(http.StatusInternalServerError, "Failed to load analytics", err)
		}
		row = &domain.PortfolioAnalytics{PortfolioID: portfolioID}
	}
	return summarize(row, u.now().UTC()), nil
}

func summarize(row *domain.PortfolioAnalytics, today time.Time) *domain.AnalyticsSummary {
	referrers := make([]domain.ReferrerCount, len(referrerShares))
	for i, r := range referrerShares {
		referrers[i] = domain.ReferrerCount{Source: r.source, Count: row.PageViews * r.share / 100}
	}

	devices := domain.DeviceBreakdown{}
	if row.PageViews > 0 {
		devices = defaultDevices
	}

	return &domain.AnalyticsSummary{
		PageViews:       row.PageViews,
		UniqueVisitors:  row.UniqueVisitors,
		AvgTimeOnPage:   row.AvgTimeOnPage,
		BounceRate:      row.BounceRate,
		TopReferrers:    referrers,
		DeviceBreakdown: devices,
		TimeSeries:      timeSeries(row.PageViews, today),
	}
}

// timeSeries spreads total views evenly over the last 30 days, oldest first,
// with the remainder on the most recent days. The series sums to total.
func timeSeries(total int, today time.Time) []domain.DailyViews {
	base := total / timeSeriesDays
	extra := total % timeSeriesDays

	series := make([]domain.DailyViews, timeSeriesDays)
	for i := range series {
		views := base
		if i >= timeSeriesDays-extra {
			views++
		}
		series[i] = domain.DailyViews{
			Date:  today.AddDate(0, 0, i-(timeSeriesDays-1)).Format("2006-01-02"),
			Views: views,
		}
	}
	return series
}

// ============================================================================
// Report export
// ============================================================================

func (u *analyticsUsecase) ExportReport(ctx context.Context, userID, portfolioID, format string) ([]byte, string, error) {
	summary, err := u.Summary(ctx, userID, portfolioID)
	if err != nil {
		return nil, "", err
	}

	stamp := u.now().UTC().Format("20060102_150405")
	switch format {
	case "xlsx", "":
		body, err := summaryExcel(summary)
		if err != nil {
			return nil, "", apperror.New(http.StatusInternalServerError, "Failed to build report", err)
		}
		return body, fmt.Sprintf("analytics_%s.xlsx", stamp), nil
	case "csv":
		body, err := summaryCSV(summary)
		if err != nil {
			return nil, "", apperror.New(http.StatusInternalServerError, "Failed to build report", err)
		}
		return body, fmt.Sprintf("analytics_%s.csv", stamp), nil
	default:
		return nil, "", apperror.BadRequest("Unsupported report format: " + format)
	}
}

func summaryExcel(s *domain.AnalyticsSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	overview := "Overview"
	if err := f.SetSheetName("Sheet1", overview); err != nil {
		return nil, err
	}
	overviewRows := [][]any{
		{"METRIC", "VALUE"},
		{"Page views", s.PageViews},
		{"Unique visitors", s.UniqueVisitors},
		{"Avg. time on page (s)", s.AvgTimeOnPage},
		{"Bounce rate", s.BounceRate},
		{"Desktop", s.DeviceBreakdown.Desktop},
		{"Mobile", s.DeviceBreakdown.Mobile},
		{"Tablet", s.DeviceBreakdown.Tablet},
	}
	if err := writeSheet(f, overview, overviewRows, headerStyle); err != nil {
		return nil, err
	}

	referrers := [][]any{{"SOURCE", "VISITS"}}
	for _, r := range s.TopReferrers {
		referrers = append(referrers, []any{r.Source, r.Count})
	}
	if _, err := f.NewSheet("Referrers"); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Referrers", referrers, headerStyle); err != nil {
		return nil, err
	}

	daily := [][]any{{"DATE", "VIEWS"}}
	for _, d := range s.TimeSeries {
		daily = append(daily, []any{d.Date, d.Views})
	}
	if _, err := f.NewSheet("Daily Views"); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Daily Views", daily, headerStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	endCell, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err := f.SetCellStyle(sheet, "A1", endCell, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func summaryCSV(s *domain.AnalyticsSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"section", "key", "value"},
		{"overview", "page_views", strconv.Itoa(s.PageViews)},
		{"overview", "unique_visitors", strconv.Itoa(s.UniqueVisitors)},
		{"overview", "avg_time_on_page", strconv.FormatFloat(s.AvgTimeOnPage, 'f', -1, 64)},
		{"overview", "bounce_rate", strconv.FormatFloat(s.BounceRate, 'f', -1, 64)},
		{"devices", "desktop", strconv.FormatFloat(s.DeviceBreakdown.Desktop, 'f', -1, 64)},
		{"devices", "mobile", strconv.FormatFloat(s.DeviceBreakdown.Mobile, 'f', -1, 64)},
		{"devices", "tablet", strconv.FormatFloat(s.DeviceBreakdown.Tablet, 'f', -1, 64)},
	}
	for _, r := range s.TopReferrers {
		records = append(records, []string{"referrers", r.Source, strconv.Itoa(r.Count)})
	}
	for _, d := range s.TimeSeries {
		records = append(records, []string{"daily_views", d.Date, strconv.Itoa(d.Views)})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
