package usecase

import (
	"context"
	"strings"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
)

type templateUsecase struct {
	catalog domain.TemplateCatalog
}

func NewTemplateUsecase(catalog domain.TemplateCatalog) domain.TemplateUsecase {
	return &templateUsecase{catalog: catalog}
}

// List filters the catalog by category (case-insensitive) and featured flag,
// keeping catalog order.
func (u *templateUsecase) List(_ context.Context, category string, featuredOnly bool) []domain.TemplateDescriptor {
	category = strings.TrimSpace(category)
	out := []domain.TemplateDescriptor{}
	for _, t := range u.catalog.List() {
		if featuredOnly && !t.Featured {
			continue
		}
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (u *templateUsecase) Get(_ context.Context, id string) (*domain.TemplateDescriptor, error) {
	t, ok := u.catalog.Lookup(id)
	if !ok {
		return nil, apperror.NotFound("Template not found")
	}
	return &t, nil
}
