package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/image/draw"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/logger"
)

const (
	maxOGImageBytes = 5 << 20
	ogJPEGQuality   = 85
)

type seoUsecase struct {
	repo     domain.PortfolioRepository
	store    domain.ObjectStore
	validate *validator.Validate
}

func NewSEOUsecase(repo domain.PortfolioRepository, store domain.ObjectStore, validate *validator.Validate) domain.SEOUsecase {
	return &seoUsecase{repo: repo, store: store, validate: validate}
}

func (u *seoUsecase) Get(ctx context.Context, userID, portfolioID string) (*domain.SEOView, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "view your own portfolios")
	if err != nil {
		return nil, err
	}
	return seoView(currentSEO(p)), nil
}

func (u *seoUsecase) Update(ctx context.Context, userID, portfolioID string, settings *domain.SEOSettings) (*domain.SEOView, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "edit your own portfolios")
	if err != nil {
		return nil, err
	}

	next := domain.SEOSettings{
		Title:       strings.TrimSpace(settings.Title),
		Description: strings.TrimSpace(settings.Description),
		Keywords:    normalizeKeywords(settings.Keywords),
		OGImage:     strings.TrimSpace(settings.OGImage),
	}
	if err := u.validate.Struct(next); err != nil {
		return nil, validationFailed(err)
	}

	if err := u.repo.SetSEO(ctx, p.ID, &next); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to save SEO settings", err)
	}
	return seoView(next), nil
}

// UploadOGImage crops and scales the upload to the social card size, stores
// it as JPEG and points og_image at it.
func (u *seoUsecase) UploadOGImage(ctx context.Context, userID, portfolioID string, data []byte) (*domain.SEOView, error) {
	p, err := loadOwnedPortfolio(ctx, u.repo, userID, portfolioID, "edit your own portfolios")
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, apperror.BadRequest("Image is required")
	}
	if len(data) > maxOGImageBytes {
		return nil, apperror.BadRequest("Image must be 5MB or smaller")
	}

	body, err := resizeOGImage(data)
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Unsupported image. Upload a PNG or JPEG file", err)
	}

	key := fmt.Sprintf("og/%s.jpg", p.ID)
	url, err := u.store.Put(ctx, key, "image/jpeg", body)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to upload image", err)
	}

	next := currentSEO(p)
	next.OGImage = url
	if err := u.repo.SetSEO(ctx, p.ID, &next); err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to save SEO settings", err)
	}

	logger.Log.Info("og image uploaded", "portfolio_id", p.ID, "bytes", len(body))
	return seoView(next), nil
}

func currentSEO(p *domain.Portfolio) domain.SEOSettings {
	if p.SEO == nil {
		return domain.SEOSettings{Keywords: []string{}}
	}
	s := *p.SEO
	s.Keywords = append([]string{}, p.SEO.Keywords...)
	return s
}

// normalizeKeywords trims, drops blanks and removes duplicates keeping the
// first occurrence.
func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func seoView(s domain.SEOSettings) *domain.SEOView {
	titleLen := utf8.RuneCountInString(s.Title)
	descLen := utf8.RuneCountInString(s.Description)
	return &domain.SEOView{
		Settings: s,
		Hints: domain.SEOHints{
			TitleLength:       titleLen,
			TitleOptimal:      titleLen >= 50 && titleLen <= domain.SEOTitleMax,
			DescriptionLength: descLen,
			DescOptimal:       descLen >= 150 && descLen <= domain.SEODescriptionMax,
		},
	}
}

// resizeOGImage center-crops to the card aspect ratio and scales to
// OGImageWidth x OGImageHeight.
func resizeOGImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("empty image")
	}

	var crop image.Rectangle
	// Compare w/h against W/H without floats.
	if b.Dx()*domain.OGImageHeight > b.Dy()*domain.OGImageWidth {
		w := b.Dy() * domain.OGImageWidth / domain.OGImageHeight
		x0 := b.Min.X + (b.Dx()-w)/2
		crop = image.Rect(x0, b.Min.Y, x0+w, b.Max.Y)
	} else {
		h := b.Dx() * domain.OGImageHeight / domain.OGImageWidth
		y0 := b.Min.Y + (b.Dy()-h)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, domain.OGImageWidth, domain.OGImageHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: ogJPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
