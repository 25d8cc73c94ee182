package preview

import "fmt"

// Section builders shared by the strategies. Each call returns fresh slices
// so documents never alias each other.

type entryStyle int

const (
	// entryRaw shows the whole line as the item title.
	entryRaw entryStyle = iota
	// entrySplit shows primary as title and secondary as subtitle.
	entrySplit
)

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func strs(values ...string) []string {
	return append([]string(nil), values...)
}

func buildHeader(p ParsedRecord, nav, actions []string, sticky bool) *Header {
	return &Header{
		Title:    orDefault(p.Name, PlaceholderName),
		Subtitle: orDefault(p.Profession, PlaceholderProfession),
		Tagline:  orDefault(p.Description, PlaceholderDescription),
		Nav:      nav,
		Actions:  actions,
		Sticky:   sticky,
	}
}

func aboutSection(p ParsedRecord, title string) Section {
	s := Section{ID: "about", Kind: SectionAbout, Title: title, Body: p.About}
	if p.About == "" {
		s.Empty = EmptyAbout
	}
	return s
}

func skillsSection(p ParsedRecord, title string) Section {
	s := Section{ID: "skills", Kind: SectionSkills, Title: title}
	if len(p.Skills) == 0 {
		s.Empty = EmptySkills
		return s
	}
	s.Tags = strs(p.Skills...)
	return s
}

func experienceSection(p ParsedRecord, title string, style entryStyle) Section {
	s := Section{ID: "experience", Kind: SectionExperience, Title: title}
	if len(p.Experience) == 0 {
		s.Empty = EmptyExperience
		return s
	}
	s.Items = entryItems(p.Experience, style, nil)
	return s
}

func projectsSection(p ParsedRecord, title string, links []string) Section {
	s := Section{ID: "projects", Kind: SectionProjects, Title: title}
	if len(p.Projects) == 0 {
		s.Empty = EmptyProjects
		return s
	}
	s.Items = entryItems(p.Projects, entrySplit, links)
	return s
}

func contactSection(title, body string, actions []string) Section {
	return Section{
		ID:      "contact",
		Kind:    SectionContact,
		Title:   title,
		Body:    body,
		Actions: actions,
	}
}

func entryItems(entries []Entry, style entryStyle, links []string) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{Title: e.Raw}
		if style == entrySplit {
			item.Title = e.Primary
			item.Subtitle = e.Secondary
		}
		if len(links) > 0 {
			item.Links = strs(links...)
		}
		items = append(items, item)
	}
	return items
}

func copyrightFooter(p ParsedRecord) string {
	return fmt.Sprintf("© %s. All rights reserved.", orDefault(p.Name, PlaceholderName))
}

func spanned(s Section, span int) Section {
	s.Span = span
	return s
}
