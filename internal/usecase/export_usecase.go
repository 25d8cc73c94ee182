package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/preview"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/logger"
	"quickfolio-backend/pkg/objectstore"
)

// Archive entries get a fixed timestamp so identical portfolios produce
// identical archives.
var archiveModTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	interTagSpace = regexp.MustCompile(`>\s+<`)
	lineIndent    = regexp.MustCompile(`(?m)^\s+`)
)

type exportFile struct {
	name string
	body []byte
}

type exportUsecase struct {
	repo     domain.PortfolioRepository
	store    domain.ObjectStore
	validate *validator.Validate
	audit    *audit.Logger
}

func NewExportUsecase(repo domain.PortfolioRepository, store domain.ObjectStore, validate *validator.Validate, auditLog *audit.Logger) domain.ExportUsecase {
	return &exportUsecase{repo: repo, store: store, validate: validate, audit: auditLog}
}

func exportKey(exportID string, format domain.ExportFormat) string {
	return fmt.Sprintf("exports/%s/%s.zip", exportID, format)
}

// Export packages the rendered portfolio as a zip archive in the requested
// project format and stores it for download.
func (u *exportUsecase) Export(ctx context.Context, userID, portfolioID string, opts domain.ExportOptions) (*domain.ExportResult, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "export your own portfolios")
	if err != nil {
		return nil, err
	}
	if err := u.validate.Struct(opts); err != nil {
		return nil, validationFailed(err)
	}

	files, err := buildExportFiles(p, opts)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to build export", err)
	}

	archive, err := zipFiles(files)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to package export", err)
	}

	exportID := uuid.NewString()
	if _, err := u.store.Put(ctx, exportKey(exportID, opts.Format), "application/zip", archive); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to store export", err)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}

	logger.Log.Info("portfolio exported", "portfolio_id", p.ID, "export_id", exportID, "format", opts.Format, "bytes", len(archive))
	u.audit.Record(ctx, audit.ActionExported, userID, p.ID, map[string]any{"export_id": exportID, "format": opts.Format})

	return &domain.ExportResult{
		ExportID:    exportID,
		Format:      opts.Format,
		DownloadURL: fmt.Sprintf("/v1/exports/%s/download?format=%s", exportID, opts.Format),
		Size:        len(archive),
		Files:       names,
	}, nil
}

// Download returns a stored archive. Export ids are random UUIDs and act as
// the download capability.
func (u *exportUsecase) Download(ctx context.Context, exportID string, format domain.ExportFormat) ([]byte, string, error) {
	if _, err := uuid.Parse(exportID); err != nil {
		return nil, "", apperror.NotFound("Export not found")
	}
	if !format.IsValid() {
		return nil, "", apperror.BadRequest("Invalid export format")
	}

	body, contentType, err := u.store.Get(ctx, exportKey(exportID, format))
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, "", apperror.NotFound("Export not found")
		}
		return nil, "", apperror.New(http.StatusInternalServerError, "Failed to load export", err)
	}
	if contentType == "" {
		contentType = "application/zip"
	}
	return body, contentType, nil
}

// ============================================================================
// Archive builders
// ============================================================================

func buildExportFiles(p *domain.Portfolio, opts domain.ExportOptions) ([]exportFile, error) {
	page, err := preview.RenderHTML(p.TemplateID, p.Content, p.Customization)
	if err != nil {
		return nil, err
	}
	content, err := encodeJSON(p.Content, opts.Minify)
	if err != nil {
		return nil, err
	}
	if opts.Minify {
		page = minifyHTML(page)
	}

	var files []exportFile
	switch opts.Format {
	case domain.ExportHTML:
		files = []exportFile{
			{"index.html", page},
			{"content.json", content},
		}
	case domain.ExportCode:
		doc, err := encodeJSON(preview.Render(p.TemplateID, p.Content), opts.Minify)
		if err != nil {
			return nil, err
		}
		files = []exportFile{
			{"index.html", page},
			{"content.json", content},
			{"document.json", doc},
		}
	case domain.ExportNextJS:
		files, err = nextJSFiles(p, page, content)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}

	if opts.IncludeAssets {
		files = append(files, exportFile{"assets/theme.css", []byte(preview.ThemeCSS(p.Customization))})
		if p.SEO != nil {
			seo, err := encodeJSON(p.SEO, opts.Minify)
			if err != nil {
				return nil, err
			}
			files = append(files, exportFile{"assets/seo.json", seo})
		}
	}

	files = append(files, exportFile{"README.md", readme(p, opts.Format)})
	return files, nil
}

func nextJSFiles(p *domain.Portfolio, page, content []byte) ([]exportFile, error) {
	pkg, err := json.MarshalIndent(map[string]any{
		"name":    p.Slug,
		"version": "0.1.0",
		"private": true,
		"scripts": map[string]string{
			"dev":   "next dev",
			"build": "next build",
			"start": "next start",
		},
		"dependencies": map[string]string{
			"next":      "14.2.3",
			"react":     "18.3.1",
			"react-dom": "18.3.1",
		},
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	markup, err := json.Marshal(string(page))
	if err != nil {
		return nil, err
	}

	return []exportFile{
		{"package.json", pkg},
		{"next.config.mjs", []byte("const nextConfig = { output: \"export\" };\n\nexport default nextConfig;\n")},
		{"app/layout.js", []byte(fmt.Sprintf(`export const metadata = { title: %q };

export default function RootLayout({ children }) {
  return (
    <html lang="en">
      <body>{children}</body>
    </html>
  );
}
`, p.Name))},
		{"app/page.js", []byte(`import markup from "./portfolio.js";

export default function Page() {
  return <div dangerouslySetInnerHTML={{ __html: markup }} />;
}
`)},
		{"app/portfolio.js", []byte("const markup = " + string(markup) + ";\n\nexport default markup;\n")},
		{"content.json", content},
	}, nil
}

func readme(p *domain.Portfolio, format domain.ExportFormat) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	fmt.Fprintf(&b, "Exported from Quickfolio using the %s template.\n\n", p.TemplateID)
	switch format {
	case domain.ExportNextJS:
		b.WriteString("Run `npm install` then `npm run dev`.\n")
	case domain.ExportHTML:
		b.WriteString("Open `index.html` in a browser or upload the folder to any static host.\n")
	case domain.ExportCode:
		b.WriteString("`document.json` is the page structure used to render `index.html`; `content.json` is the source record.\n")
	}
	return []byte(b.String())
}

func encodeJSON(v any, minify bool) ([]byte, error) {
	if minify {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// minifyHTML drops indentation and whitespace between tags. Text content is
// left alone.
func minifyHTML(page []byte) []byte {
	page = lineIndent.ReplaceAll(page, nil)
	return interTagSpace.ReplaceAll(page, []byte("><"))
}

func zipFiles(files []exportFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.name,
			Method:   zip.Deflate,
			Modified: archiveModTime,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.body); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
