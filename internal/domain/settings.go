package domain

import "context"

// ============================================================================
// Custom Domain
// ============================================================================

type DomainRecordType string

const (
	DomainRecordCNAME DomainRecordType = "CNAME"
	DomainRecordA     DomainRecordType = "A"
	DomainRecordTXT   DomainRecordType = "TXT"
)

// DomainVerification is one DNS record the user has to create.
type DomainVerification struct {
	Type  DomainRecordType `json:"type"`
	Name  string           `json:"name"`
	Value string           `json:"value"`
}

type DomainStatus struct {
	Configured bool   `json:"configured"`
	Status     string `json:"status"` // valid | invalid | pending
	Message    string `json:"message,omitempty"`
}

type DomainState struct {
	Domain *string       `json:"domain"`
	Status *DomainStatus `json:"status"`
}

type AddDomainRequest struct {
	Domain string `json:"domain" validate:"required,max=253,valid_domain"`
}

type AddDomainResult struct {
	Domain        string               `json:"domain"`
	Message       string               `json:"message"`
	Verifications []DomainVerification `json:"verifications"`
}

type DomainUsecase interface {
	Add(ctx context.Context, userID, portfolioID, domain string) (*AddDomainResult, error)
	Status(ctx context.Context, userID, portfolioID string) (*DomainState, error)
	Remove(ctx context.Context, userID, portfolioID string) error
}

// ============================================================================
// SEO
// ============================================================================

const (
	SEOTitleMax       = 60
	SEODescriptionMax = 160
	OGImageWidth      = 1200
	OGImageHeight     = 630
)

type SEOSettings struct {
	Title       string   `json:"title" validate:"max=60,no_emoji"`
	Description string   `json:"description" validate:"max=160,no_emoji"`
	Keywords    []string `json:"keywords" validate:"max=30,unique_items,dive,required,max=50"`
	OGImage     string   `json:"og_image" validate:"omitempty,url"`
}

// SEOHints are advisory, non-blocking length recommendations.
type SEOHints struct {
	TitleLength       int  `json:"title_length"`
	TitleOptimal      bool `json:"title_optimal"`
	DescriptionLength int  `json:"description_length"`
	DescOptimal       bool `json:"description_optimal"`
}

type SEOView struct {
	Settings SEOSettings `json:"settings"`
	Hints    SEOHints    `json:"hints"`
}

type SEOUsecase interface {
	Get(ctx context.Context, userID, portfolioID string) (*SEOView, error)
	Update(ctx context.Context, userID, portfolioID string, settings *SEOSettings) (*SEOView, error)
	UploadOGImage(ctx context.Context, userID, portfolioID string, image []byte) (*SEOView, error)
}

// ============================================================================
// Customization
// ============================================================================

type ColorSettings struct {
	Primary    string `json:"primary" validate:"required,hexcolor"`
	Background string `json:"background" validate:"required,hexcolor"`
	Text       string `json:"text" validate:"required,hexcolor"`
	Accent     string `json:"accent" validate:"required,hexcolor"`
}

type TypographySettings struct {
	HeadingFont string  `json:"heading_font" validate:"required,oneof=inter roboto montserrat playfair-display open-sans lato"`
	BodyFont    string  `json:"body_font" validate:"required,oneof=inter roboto montserrat playfair-display open-sans lato"`
	FontSize    int     `json:"font_size" validate:"min=12,max=24"`
	LineHeight  float64 `json:"line_height" validate:"min=1,max=2.5"`
}

type LayoutSettings struct {
	Spacing          int  `json:"spacing" validate:"min=0,max=64"`
	BorderRadius     int  `json:"border_radius" validate:"min=0,max=32"`
	EnableAnimations bool `json:"enable_animations"`
	DarkMode         bool `json:"dark_mode"`
}

type CustomizationSettings struct {
	Colors     ColorSettings      `json:"colors" validate:"required"`
	Typography TypographySettings `json:"typography" validate:"required"`
	Layout     LayoutSettings     `json:"layout" validate:"required"`
}

// Fonts lists the selectable font families.
func Fonts() []string {
	return []string{"inter", "roboto", "montserrat", "playfair-display", "open-sans", "lato"}
}

// DefaultCustomization returns the settings a new portfolio starts with.
func DefaultCustomization() CustomizationSettings {
	return CustomizationSettings{
		Colors: ColorSettings{
			Primary:    "#3b82f6",
			Background: "#ffffff",
			Text:       "#000000",
			Accent:     "#10b981",
		},
		Typography: TypographySettings{
			HeadingFont: "inter",
			BodyFont:    "inter",
			FontSize:    16,
			LineHeight:  1.5,
		},
		Layout: LayoutSettings{
			Spacing:          16,
			BorderRadius:     8,
			EnableAnimations: true,
			DarkMode:         false,
		},
	}
}

type CustomizationUsecase interface {
	Get(ctx context.Context, userID, portfolioID string) (*CustomizationSettings, error)
	Update(ctx context.Context, userID, portfolioID string, settings *CustomizationSettings) (*CustomizationSettings, error)
	Reset(ctx context.Context, userID, portfolioID string) (*CustomizationSettings, error)
}
