package preview

import (
	"sort"

	"quickfolio-backend/internal/domain"
)

// Strategy arranges a parsed record into a document. Strategies are pure and
// hold no state.
type Strategy func(p ParsedRecord) Document

// registry is the closed set of known templates. Adding a template means
// adding one entry here and one strategy file.
var registry = map[domain.TemplateID]Strategy{
	domain.TemplateMinimalist:   renderMinimalist,
	domain.TemplateProfessional: renderProfessional,
	domain.TemplateCreative:     renderCreative,
	domain.TemplateBento:        renderBento,
}

// Render maps (template, record) to a document. Unknown or empty template
// ids render the placeholder, never an error.
func Render(templateID string, record domain.ContentRecord) Document {
	strategy, ok := registry[domain.TemplateID(templateID)]
	if !ok {
		return placeholder(templateID)
	}
	return strategy(Parse(record))
}

// IsRegistered reports whether a strategy exists for the id.
func IsRegistered(templateID string) bool {
	_, ok := registry[domain.TemplateID(templateID)]
	return ok
}

// Registered lists the known template ids in sorted order.
func Registered() []domain.TemplateID {
	ids := make([]domain.TemplateID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func placeholder(templateID string) Document {
	return Document{
		TemplateID: templateID,
		Layout:     LayoutPlaceholder,
		Theme:      Theme{Tone: "muted", Alignment: "center"},
		Placeholder: &Placeholder{
			Title:   PlaceholderTitle,
			Message: PlaceholderMessage,
		},
	}
}
