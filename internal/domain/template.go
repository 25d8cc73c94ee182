package domain

import "context"

// TemplateID identifies a preview rendering strategy.
type TemplateID string

const (
	TemplateMinimalist   TemplateID = "minimalist"
	TemplateProfessional TemplateID = "professional"
	TemplateCreative     TemplateID = "creative"
	TemplateBento        TemplateID = "bento"
)

// TemplateDescriptor is a read-only catalog entry shown at the template step.
type TemplateDescriptor struct {
	ID           TemplateID `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	PreviewImage string     `json:"preview_image" yaml:"preview_image"`
	Category     string     `json:"category" yaml:"category"`
	Featured     bool       `json:"featured" yaml:"featured"`
}

// TemplateCatalog is the injected, static list of selectable templates.
type TemplateCatalog interface {
	List() []TemplateDescriptor
	Lookup(id string) (TemplateDescriptor, bool)
	Contains(id string) bool
}

type TemplateUsecase interface {
	List(ctx context.Context, category string, featuredOnly bool) []TemplateDescriptor
	Get(ctx context.Context, id string) (*TemplateDescriptor, error)
}
