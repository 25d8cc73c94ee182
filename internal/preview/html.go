package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"quickfolio-backend/internal/domain"
)

// Raw HTML in the about text is dropped by goldmark (no WithUnsafe).
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

var fontFamilies = map[string]string{
	"inter":            "'Inter', sans-serif",
	"roboto":           "'Roboto', sans-serif",
	"montserrat":       "'Montserrat', sans-serif",
	"playfair-display": "'Playfair Display', serif",
	"open-sans":        "'Open Sans', sans-serif",
	"lato":             "'Lato', sans-serif",
}

type pageData struct {
	Doc    Document
	Vars   template.CSS
	Dark   bool
	About  template.HTML
	Title  string
	Motion bool
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"isAbout": func(k SectionKind) bool { return k == SectionAbout },
	"anchor":  strings.ToLower,
}).Parse(`<!DOCTYPE html>
<html lang="en"{{if .Dark}} class="dark"{{end}}>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>:root{ {{- .Vars -}} }</style>
</head>
<body class="layout-{{.Doc.Layout}} tone-{{.Doc.Theme.Tone}} align-{{.Doc.Theme.Alignment}}{{if .Motion}} motion{{end}}">
{{- if .Doc.Placeholder}}
<main class="placeholder">
<h3>{{.Doc.Placeholder.Title}}</h3>
<p>{{.Doc.Placeholder.Message}}</p>
</main>
{{- else}}
{{- with .Doc.Header}}
<header{{if .Sticky}} class="sticky"{{end}}>
<h1>{{.Title}}</h1>
<p class="subtitle">{{.Subtitle}}</p>
<p class="tagline">{{.Tagline}}</p>
{{- if .Nav}}
<nav>{{range .Nav}}<a href="#{{anchor .}}">{{.}}</a>{{end}}</nav>
{{- end}}
{{- if .Actions}}
<div class="actions">{{range .Actions}}<button>{{.}}</button>{{end}}</div>
{{- end}}
</header>
{{- end}}
<main>
{{- range .Doc.Sections}}
<section id="{{.ID}}" class="section-{{.Kind}}{{if .Span}} span-{{.Span}}{{end}}">
<h2>{{.Title}}</h2>
{{- if .Empty}}
<p class="empty">{{.Empty}}</p>
{{- else}}
{{- if isAbout .Kind}}
<div class="body">{{$.About}}</div>
{{- else if .Body}}
<p class="body">{{.Body}}</p>
{{- end}}
{{- if .Tags}}
<ul class="tags">{{range .Tags}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
{{- if .Items}}
<ul class="items">
{{- range .Items}}
<li><h3>{{.Title}}</h3>{{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}{{range .Links}}<a class="link">{{.}}</a>{{end}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .Actions}}
<div class="actions">{{range .Actions}}<button>{{.}}</button>{{end}}</div>
{{- end}}
{{- end}}
</section>
{{- end}}
</main>
{{- if .Doc.Footer}}
<footer><p>{{.Doc.Footer}}</p></footer>
{{- end}}
{{- end}}
</body>
</html>
`))

// HTML renders a document as a standalone page. A nil customization uses the
// defaults.
func HTML(doc Document, about string, settings *domain.CustomizationSettings) ([]byte, error) {
	cs := domain.DefaultCustomization()
	if settings != nil {
		cs = *settings
	}

	var md bytes.Buffer
	if about != "" {
		if err := markdown.Convert([]byte(about), &md); err != nil {
			return nil, fmt.Errorf("failed to render about markdown: %w", err)
		}
	}

	title := PlaceholderTitle
	if doc.Header != nil {
		title = doc.Header.Title
	}

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, pageData{
		Doc:    doc,
		Vars:   cssVariables(cs),
		Dark:   cs.Layout.DarkMode,
		About:  template.HTML(md.String()), // goldmark output, raw HTML stripped
		Title:  title,
		Motion: cs.Layout.EnableAnimations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return out.Bytes(), nil
}

// RenderHTML is Render followed by HTML.
func RenderHTML(templateID string, record domain.ContentRecord, settings *domain.CustomizationSettings) ([]byte, error) {
	doc := Render(templateID, record)
	return HTML(doc, strings.TrimSpace(record.About), settings)
}

func cssVariables(cs domain.CustomizationSettings) template.CSS {
	vars := []struct{ name, value string }{
		{"--color-primary", cs.Colors.Primary},
		{"--color-background", cs.Colors.Background},
		{"--color-text", cs.Colors.Text},
		{"--color-accent", cs.Colors.Accent},
		{"--font-heading", fontFamily(cs.Typography.HeadingFont)},
		{"--font-body", fontFamily(cs.Typography.BodyFont)},
		{"--font-size", fmt.Sprintf("%dpx", cs.Typography.FontSize)},
		{"--line-height", fmt.Sprintf("%g", cs.Typography.LineHeight)},
		{"--spacing", fmt.Sprintf("%dpx", cs.Layout.Spacing)},
		{"--radius", fmt.Sprintf("%dpx", cs.Layout.BorderRadius)},
	}
	var b strings.Builder
	for _, v := range vars {
		b.WriteString(v.name)
		b.WriteByte(':')
		b.WriteString(cssSafe(v.value))
		b.WriteByte(';')
	}
	// Values are validated hex colours, known font keys or numbers; cssSafe
	// strips anything that could close the declaration.
	return template.CSS(b.String())
}

func fontFamily(key string) string {
	if f, ok := fontFamilies[key]; ok {
		return f
	}
	return fontFamilies["inter"]
}

func cssSafe(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\\':
			return -1
		}
		return r
	}, v)
}

// ThemeCSS returns the customization as a standalone :root rule, for exports
// that ship their stylesheet separately.
func ThemeCSS(settings *domain.CustomizationSettings) string {
	cs := domain.DefaultCustomization()
	if settings != nil {
		cs = *settings
	}
	return ":root{" + string(cssVariables(cs)) + "}\n"
}
