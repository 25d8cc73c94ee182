package preview

import "quickfolio-backend/internal/domain"

const minimalistContactBody = "Feel free to reach out if you're looking for a developer, have a question, or just want to connect."

// renderMinimalist: sticky header with navigation, split hero, project cards
// with demo/source links and an experience timeline.
func renderMinimalist(p ParsedRecord) Document {
	return Document{
		TemplateID: string(domain.TemplateMinimalist),
		Layout:     LayoutSplitHero,
		Theme:      Theme{Tone: "light", Accent: "gray", Alignment: "left"},
		Header: buildHeader(p,
			strs("About", "Projects", "Experience", "Contact"),
			strs("Contact Me", "Resume"),
			true,
		),
		Sections: []Section{
			aboutSection(p, "About Me"),
			skillsSection(p, "Skills"),
			projectsSection(p, "Projects", strs("Live Demo", "Source Code")),
			experienceSection(p, "Experience", entrySplit),
			contactSection("Get In Touch", minimalistContactBody,
				strs("Email", "LinkedIn", "Twitter", "GitHub")),
		},
		Footer: copyrightFooter(p),
	}
}
