// Package catalog holds the read-only list of selectable templates.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"quickfolio-backend/internal/domain"
)

//go:embed templates.yaml
var defaultTemplates []byte

type file struct {
	Templates []domain.TemplateDescriptor `yaml:"templates"`
}

// Catalog is immutable after construction.
type Catalog struct {
	templates []domain.TemplateDescriptor
	byID      map[string]int
}

// Default loads the embedded catalog. It panics on a malformed embed since
// that is a build defect.
func Default() *Catalog {
	c, err := Parse(defaultTemplates)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded templates.yaml: %v", err))
	}
	return c
}

// Parse builds a catalog from YAML. Ids must be non-empty and unique.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Templates)
}

func New(templates []domain.TemplateDescriptor) (*Catalog, error) {
	c := &Catalog{
		templates: make([]domain.TemplateDescriptor, 0, len(templates)),
		byID:      make(map[string]int, len(templates)),
	}
	for _, t := range templates {
		id := strings.TrimSpace(string(t.ID))
		if id == "" {
			return nil, fmt.Errorf("catalog: template %q has no id", t.Name)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate template id %q", id)
		}
		t.ID = domain.TemplateID(id)
		c.byID[id] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// List returns the templates in catalog order.
func (c *Catalog) List() []domain.TemplateDescriptor {
	return append([]domain.TemplateDescriptor(nil), c.templates...)
}

func (c *Catalog) Lookup(id string) (domain.TemplateDescriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.TemplateDescriptor{}, false
	}
	return c.templates[i], true
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Featured returns the featured templates in catalog order.
func (c *Catalog) Featured() []domain.TemplateDescriptor {
	var out []domain.TemplateDescriptor
	for _, t := range c.templates {
		if t.Featured {
			out = append(out, t)
		}
	}
	return out
}
