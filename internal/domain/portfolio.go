package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource already exists")
)

// ============================================================================
// Profession
// ============================================================================

type Profession string

const (
	ProfessionDesigner     Profession = "designer"
	ProfessionDeveloper    Profession = "developer"
	ProfessionPhotographer Profession = "photographer"
	ProfessionWriter       Profession = "writer"
	ProfessionMarketer     Profession = "marketer"
	ProfessionOther        Profession = "other"
)

// ValidProfessions returns all valid profession keys in display order
func ValidProfessions() []Profession {
	return []Profession{
		ProfessionDesigner,
		ProfessionDeveloper,
		ProfessionPhotographer,
		ProfessionWriter,
		ProfessionMarketer,
		ProfessionOther,
	}
}

// IsValid checks if the profession is one of the known values
func (p Profession) IsValid() bool {
	for _, valid := range ValidProfessions() {
		if p == valid {
			return true
		}
	}
	return false
}

// ============================================================================
// Content Record
// ============================================================================

// ContentRecord is the flat, delimiter-encoded portfolio content collected by
// the creation wizard. Skills are comma separated; experience and projects
// are one entry per line.
type ContentRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Profession  string `json:"profession"`
	TemplateID  string `json:"template_id"`
	About       string `json:"about"`
	Skills      string `json:"skills"`
	Experience  string `json:"experience"`
	Projects    string `json:"projects"`
	Contact     string `json:"contact"`
}

// ContentPatch carries a partial update of a ContentRecord. Nil fields are
// left untouched. TemplateID is deliberately absent: template changes go
// through explicit selection.
type ContentPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=300"`
	Profession  *string `json:"profession,omitempty" validate:"omitempty,oneof=designer developer photographer writer marketer other"`
	About       *string `json:"about,omitempty" validate:"omitempty,max=5000"`
	Skills      *string `json:"skills,omitempty" validate:"omitempty,max=2000"`
	Experience  *string `json:"experience,omitempty" validate:"omitempty,max=5000"`
	Projects    *string `json:"projects,omitempty" validate:"omitempty,max=5000"`
	Contact     *string `json:"contact,omitempty" validate:"omitempty,max=500"`
}

// Apply copies every non-nil field of the patch onto r.
func (p ContentPatch) Apply(r *ContentRecord) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.Name, p.Name)
	set(&r.Description, p.Description)
	set(&r.Profession, p.Profession)
	set(&r.About, p.About)
	set(&r.Skills, p.Skills)
	set(&r.Experience, p.Experience)
	set(&r.Projects, p.Projects)
	set(&r.Contact, p.Contact)
}

// IsEmpty reports whether the patch changes nothing.
func (p ContentPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Profession == nil &&
		p.About == nil && p.Skills == nil && p.Experience == nil &&
		p.Projects == nil && p.Contact == nil
}

// ============================================================================
// Portfolio
// ============================================================================

type Portfolio struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	Name          string                 `json:"name"`
	Description   *string                `json:"description"`
	TemplateID    string                 `json:"template_id"`
	Published     bool                   `json:"published"`
	Slug          string                 `json:"slug"`
	Content       ContentRecord          `json:"content"`
	CustomDomain  *string                `json:"custom_domain"`
	SEO           *SEOSettings           `json:"seo"`
	Customization *CustomizationSettings `json:"customization,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// Status is the dashboard badge label.
func (p *Portfolio) Status() string {
	if p.Published {
		return "published"
	}
	return "draft"
}

// PortfolioUpdate is the dashboard edit payload.
type PortfolioUpdate struct {
	Name        *string       `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=300"`
	TemplateID  *string       `json:"template_id,omitempty"`
	Slug        *string       `json:"slug,omitempty" validate:"omitempty,max=63,valid_slug"`
	Content     *ContentPatch `json:"content,omitempty" validate:"omitempty"`
}

// ============================================================================
// Repository Interface
// ============================================================================

type PortfolioRepository interface {
	Create(ctx context.Context, p *Portfolio) error
	GetByID(ctx context.Context, id string) (*Portfolio, error)
	GetBySlug(ctx context.Context, slug string) (*Portfolio, error)
	ListByUser(ctx context.Context, userID string) ([]Portfolio, error)
	Update(ctx context.Context, p *Portfolio) error
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug string) (bool, error)

	SetPublished(ctx context.Context, id string, published bool) error
	FindByCustomDomain(ctx context.Context, domain string) (*Portfolio, error)
	SetCustomDomain(ctx context.Context, id string, domain *string) error
	SetSEO(ctx context.Context, id string, seo *SEOSettings) error
	SetCustomization(ctx context.Context, id string, settings *CustomizationSettings) error
}

// ============================================================================
// Usecase Interface
// ============================================================================

type PortfolioUsecase interface {
	List(ctx context.Context, userID string) ([]Portfolio, error)
	Get(ctx context.Context, userID, id string) (*Portfolio, error)
	Create(ctx context.Context, userID string, record ContentRecord, published bool) (*Portfolio, error)
	Update(ctx context.Context, userID, id string, upd *PortfolioUpdate) (*Portfolio, error)
	Delete(ctx context.Context, userID, id string) error
}
