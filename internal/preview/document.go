package preview

// Layout names the structural arrangement of a rendered document.
type Layout string

const (
	LayoutSplitHero   Layout = "split-hero"
	LayoutCentered    Layout = "centered"
	LayoutAsymmetric  Layout = "asymmetric"
	LayoutGrid        Layout = "grid"
	LayoutPlaceholder Layout = "placeholder"
)

type SectionKind string

const (
	SectionAbout      SectionKind = "about"
	SectionSkills     SectionKind = "skills"
	SectionExperience SectionKind = "experience"
	SectionProjects   SectionKind = "projects"
	SectionContact    SectionKind = "contact"
)

// Empty state messages shown while the user has not filled a field yet.
const (
	EmptyAbout      = "No information provided yet."
	EmptySkills     = "No skills listed yet."
	EmptyExperience = "No experience listed yet."
	EmptyProjects   = "No projects listed yet."

	PlaceholderName        = "Your Name"
	PlaceholderProfession  = "Your Profession"
	PlaceholderDescription = "A brief description of your portfolio"

	PlaceholderTitle   = "Select a template to preview"
	PlaceholderMessage = "Choose a template from the previous step to see a preview"
)

type Theme struct {
	Tone      string `json:"tone"` // light | dark | two-tone | muted
	Accent    string `json:"accent"`
	Alignment string `json:"alignment"` // left | center
}

type Header struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Tagline  string   `json:"tagline"`
	Nav      []string `json:"nav,omitempty"`
	Actions  []string `json:"actions,omitempty"`
	Sticky   bool     `json:"sticky"`
}

type Item struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Links    []string `json:"links,omitempty"`
}

type Section struct {
	ID    string      `json:"id"`
	Kind  SectionKind `json:"kind"`
	Title string      `json:"title"`
	Body  string      `json:"body,omitempty"`
	Tags  []string    `json:"tags,omitempty"`
	Items []Item      `json:"items,omitempty"`
	// Actions are contact buttons.
	Actions []string `json:"actions,omitempty"`
	// Empty holds the empty-state message; set only when the section has no content.
	Empty string `json:"empty,omitempty"`
	// Span is the column span in grid layouts.
	Span int `json:"span,omitempty"`
}

// IsEmpty reports whether the section renders its empty state.
func (s Section) IsEmpty() bool {
	return s.Empty != ""
}

type Placeholder struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Document is the structural output of a render.
type Document struct {
	TemplateID  string       `json:"template_id"`
	Layout      Layout       `json:"layout"`
	Theme       Theme        `json:"theme"`
	Header      *Header      `json:"header,omitempty"`
	Sections    []Section    `json:"sections,omitempty"`
	Footer      string       `json:"footer,omitempty"`
	Placeholder *Placeholder `json:"placeholder,omitempty"`
}

// IsPlaceholder reports whether the document is the "select a template" state.
func (d Document) IsPlaceholder() bool {
	return d.Placeholder != nil
}

// Section returns the first section of the given kind.
func (d Document) Section(kind SectionKind) (Section, bool) {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}
