package preview

import "quickfolio-backend/internal/domain"

// renderCreative: dark asymmetric two-tone layout with oversized headings.
func renderCreative(p ParsedRecord) Document {
	return Document{
		TemplateID: string(domain.TemplateCreative),
		Layout:     LayoutAsymmetric,
		Theme:      Theme{Tone: "two-tone", Accent: "purple", Alignment: "left"},
		Header:     buildHeader(p, nil, strs("View Work", "Contact"), false),
		Sections: []Section{
			aboutSection(p, "About"),
			skillsSection(p, "Skills"),
			experienceSection(p, "Experience", entryRaw),
			projectsSection(p, "Projects", nil),
			contactSection("Contact", "", strs("Email Me", "LinkedIn")),
		},
	}
}
