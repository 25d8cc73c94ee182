package domain

import (
	"context"
	"time"
)

// ============================================================================
// Deployment
// ============================================================================

type DeploymentStatus string

const (
	DeploymentPending    DeploymentStatus = "pending"
	DeploymentInProgress DeploymentStatus = "in_progress"
	DeploymentCompleted  DeploymentStatus = "completed"
	DeploymentFailed     DeploymentStatus = "failed"
)

type Deployment struct {
	ID          string           `json:"deployment_id"`
	PortfolioID string           `json:"portfolio_id"`
	URL         string           `json:"url"`
	Status      DeploymentStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

type DeploymentUsecase interface {
	Deploy(ctx context.Context, userID, portfolioID string) (*Deployment, error)
}

// ============================================================================
// Export
// ============================================================================

type ExportFormat string

const (
	ExportNextJS ExportFormat = "nextjs"
	ExportHTML   ExportFormat = "html"
	ExportCode   ExportFormat = "code"
)

func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportNextJS, ExportHTML, ExportCode:
		return true
	}
	return false
}

type ExportOptions struct {
	Format        ExportFormat `json:"format" validate:"required,oneof=nextjs html code"`
	IncludeAssets bool         `json:"include_assets"`
	Minify        bool         `json:"minify"`
}

type ExportResult struct {
	ExportID    string       `json:"export_id"`
	Format      ExportFormat `json:"format"`
	DownloadURL string       `json:"download_url"`
	Size        int          `json:"size"`
	Files       []string     `json:"files"`
}

type ExportUsecase interface {
	Export(ctx context.Context, userID, portfolioID string, opts ExportOptions) (*ExportResult, error)
	Download(ctx context.Context, exportID string, format ExportFormat) ([]byte, string, error)
}
