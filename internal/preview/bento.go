package preview

import "quickfolio-backend/internal/domain"

const bentoColumns = 2

// renderBento: card grid. About and skills share a row, experience and
// projects take the full width.
func renderBento(p ParsedRecord) Document {
	return Document{
		TemplateID: string(domain.TemplateBento),
		Layout:     LayoutGrid,
		Theme:      Theme{Tone: "muted", Accent: "zinc", Alignment: "left"},
		Header:     buildHeader(p, nil, strs("Twitter", "GitHub", "LinkedIn"), false),
		Sections: []Section{
			spanned(aboutSection(p, "About Me"), 1),
			spanned(skillsSection(p, "Skills"), 1),
			spanned(experienceSection(p, "Experience", entryRaw), bentoColumns),
			spanned(projectsSection(p, "Projects", nil), bentoColumns),
		},
	}
}
