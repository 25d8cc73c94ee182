package preview

import "quickfolio-backend/internal/domain"

// renderProfessional: single centered column.
func renderProfessional(p ParsedRecord) Document {
	return Document{
		TemplateID: string(domain.TemplateProfessional),
		Layout:     LayoutCentered,
		Theme:      Theme{Tone: "light", Accent: "primary", Alignment: "center"},
		Header:     buildHeader(p, nil, strs("Contact Me", "View Projects"), false),
		Sections: []Section{
			aboutSection(p, "About Me"),
			skillsSection(p, "Skills"),
			experienceSection(p, "Experience", entryRaw),
			projectsSection(p, "Projects", nil),
			contactSection("Get In Touch", "", strs("Email", "LinkedIn", "Twitter", "GitHub")),
		},
	}
}
