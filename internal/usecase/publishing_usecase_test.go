package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/usecase"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/objectstore"
	"quickfolio-backend/pkg/validation"
)

type MockPortfolioUsecase struct {
	mock.Mock
}

func (m *MockPortfolioUsecase) List(ctx context.Context, userID string) ([]domain.Portfolio, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioUsecase) Get(ctx context.Context, userID, id string) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioUsecase) Create(ctx context.Context, userID string, record domain.ContentRecord, published bool) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID, record, published)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioUsecase) Update(ctx context.Context, userID, id string, upd *domain.PortfolioUpdate) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioUsecase) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockDeploymentUsecase struct {
	mock.Mock
}

func (m *MockDeploymentUsecase) Deploy(ctx context.Context, userID, portfolioID string) (*domain.Deployment, error) {
	args := m.Called(ctx, userID, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deployment), args.Error(1)
}

// ============================================================================
// Deployment
// ============================================================================

func TestDeploy(t *testing.T) {
	mockRepo := new(MockPortfolioRepo)
	store := objectstore.NewMemoryStore("")
	uc := usecase.NewDeploymentUsecase(mockRepo, store, usecase.DeploymentConfig{}, nil)

	mockRepo.On("GetByID", mock.Anything, "p1").Return(ownedPortfolio("p1", "user1"), nil)
	mockRepo.On("SetPublished", mock.Anything, "p1", true).Return(nil)

	d, err := uc.Deploy(userCtx("user1"), "user1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "jane-doe.quickfolio.xyz", d.URL)
	assert.Equal(t, domain.DeploymentCompleted, d.Status)
	assert.True(t, strings.HasPrefix(d.ID, "deploy_"))

	page, contentType, err := store.Get(context.Background(), "sites/jane-doe/index.html")
	require.NoError(t, err)
	assert.Contains(t, contentType, "text/html")
	assert.Contains(t, string(page), "Jane Doe")

	t.Run("Should forbid deploying someone else's portfolio", func(t *testing.T) {
		_, err := uc.Deploy(userCtx("user2"), "user2", "p1")
		requireAppError(t, err, http.StatusForbidden)
	})

	t.Run("Should honour cancellation during build", func(t *testing.T) {
		slow := usecase.NewDeploymentUsecase(mockRepo, store, usecase.DeploymentConfig{Latency: time.Hour}, nil)
		ctx, cancel := context.WithCancel(userCtx("user1"))
		cancel()

		_, err := slow.Deploy(ctx, "user1", "p1")
		requireAppError(t, err, http.StatusRequestTimeout)
	})
}

// ============================================================================
// Publisher
// ============================================================================

func TestPortfolioPublisher(t *testing.T) {
	record := domain.ContentRecord{Name: "Jane", Profession: "developer", TemplateID: "minimalist"}
	created := &domain.Portfolio{ID: "p1", UserID: "user1", Slug: "jane"}

	t.Run("draft never deploys", func(t *testing.T) {
		portfolios := new(MockPortfolioUsecase)
		deployments := new(MockDeploymentUsecase)
		pub := usecase.NewPortfolioPublisher(portfolios, deployments, nil)

		portfolios.On("Create", mock.Anything, "user1", record, false).Return(created, nil)

		res, err := pub.Publish(userCtx("user1"), "user1", record, domain.IntentDraft)
		require.NoError(t, err)
		assert.Equal(t, "p1", res.PortfolioID)
		assert.False(t, res.Published)
		deployments.AssertNotCalled(t, "Deploy", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publish deploys", func(t *testing.T) {
		portfolios := new(MockPortfolioUsecase)
		deployments := new(MockDeploymentUsecase)
		pub := usecase.NewPortfolioPublisher(portfolios, deployments, nil)

		portfolios.On("Create", mock.Anything, "user1", record, false).Return(created, nil)
		deployments.On("Deploy", mock.Anything, "user1", "p1").Return(&domain.Deployment{
			ID:  "deploy_1",
			URL: "jane.quickfolio.xyz",
		}, nil)

		res, err := pub.Publish(userCtx("user1"), "user1", record, domain.IntentPublish)
		require.NoError(t, err)
		assert.True(t, res.Published)
		assert.Equal(t, "jane.quickfolio.xyz", res.URL)
		assert.Equal(t, "deploy_1", res.DeploymentID)
	})

	t.Run("failed deploy rolls back the portfolio", func(t *testing.T) {
		portfolios := new(MockPortfolioUsecase)
		deployments := new(MockDeploymentUsecase)
		pub := usecase.NewPortfolioPublisher(portfolios, deployments, nil)

		portfolios.On("Create", mock.Anything, "user1", record, false).Return(created, nil)
		portfolios.On("Delete", mock.Anything, "user1", "p1").Return(nil)
		deployments.On("Deploy", mock.Anything, "user1", "p1").Return(nil, apperror.Internal(errors.New("bucket down")))

		_, err := pub.Publish(userCtx("user1"), "user1", record, domain.IntentPublish)
		require.Error(t, err)
		portfolios.AssertCalled(t, "Delete", mock.Anything, "user1", "p1")
	})
}

// ============================================================================
// Export
// ============================================================================

func readZip(t *testing.T, body []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)

	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(data)
	}
	return files
}

func TestExport(t *testing.T) {
	mockRepo := new(MockPortfolioRepo)
	store := objectstore.NewMemoryStore("")
	uc := usecase.NewExportUsecase(mockRepo, store, validation.New(), nil)
	mockRepo.On("GetByID", mock.Anything, "p1").Return(ownedPortfolio("p1", "user1"), nil)

	tests := []struct {
		format domain.ExportFormat
		want   []string
	}{
		{domain.ExportHTML, []string{"index.html", "content.json", "README.md"}},
		{domain.ExportCode, []string{"index.html", "content.json", "document.json", "README.md"}},
		{domain.ExportNextJS, []string{"package.json", "next.config.mjs", "app/layout.js", "app/page.js", "app/portfolio.js", "content.json", "README.md"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			res, err := uc.Export(userCtx("user1"), "user1", "p1", domain.ExportOptions{Format: tt.format})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Files)
			assert.Equal(t, "/v1/exports/"+res.ExportID+"/download?format="+string(tt.format), res.DownloadURL)

			body, contentType, err := uc.Download(context.Background(), res.ExportID, tt.format)
			require.NoError(t, err)
			assert.Equal(t, "application/zip", contentType)
			assert.Len(t, body, res.Size)

			files := readZip(t, body)
			for _, name := range tt.want {
				assert.Contains(t, files, name)
			}
			assert.Contains(t, files["content.json"], `"name": "Jane Doe"`)
		})
	}

	t.Run("minify and assets", func(t *testing.T) {
		res, err := uc.Export(userCtx("user1"), "user1", "p1", domain.ExportOptions{
			Format:        domain.ExportHTML,
			IncludeAssets: true,
			Minify:        true,
		})
		require.NoError(t, err)
		assert.Contains(t, res.Files, "assets/theme.css")

		body, _, err := uc.Download(context.Background(), res.ExportID, domain.ExportHTML)
		require.NoError(t, err)
		files := readZip(t, body)
		assert.NotContains(t, files["index.html"], ">\n<")
		assert.Contains(t, files["content.json"], `"name":"Jane Doe"`)
		assert.Contains(t, files["assets/theme.css"], "--color-primary:#3b82f6;")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := uc.Export(userCtx("user1"), "user1", "p1", domain.ExportOptions{Format: "pdf"})
		requireAppError(t, err, http.StatusBadRequest)
	})

	t.Run("unknown export", func(t *testing.T) {
		_, _, err := uc.Download(context.Background(), "9f0c8a53-0d5b-4bb1-9a49-1b6c2f0b7c11", domain.ExportHTML)
		requireAppError(t, err, http.StatusNotFound)

		_, _, err = uc.Download(context.Background(), "../../etc/passwd", domain.ExportHTML)
		requireAppError(t, err, http.StatusNotFound)
	})
}
