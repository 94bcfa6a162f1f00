// Package blueprint instantiates fill-in planning templates. A template is
// Markdown with {{.Field}} placeholders and frontmatter declaring which
// fields the caller must supply.
package blueprint

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/sota-codex/codex/internal/document"
)

// Template pairs a parsed template document with its declared fields.
type Template struct {
	Name   string
	Path   string
	Fields []string
	body   []byte
}

// FromDocument builds a Template from a loaded corpus document.
func FromDocument(doc document.Document) (Template, error) {
	if err := doc.Meta.ValidateFor(document.KindTemplate); err != nil {
		return Template{}, err
	}
	meta := doc.Meta.Normalized()
	return Template{
		Name:   meta.Name,
		Path:   doc.Path,
		Fields: meta.Fields,
		body:   doc.Body,
	}, nil
}

// MissingFields returns the declared fields absent from values, sorted.
func (t Template) MissingFields(values map[string]string) []string {
	var missing []string
	for _, field := range t.Fields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

// Instantiate renders the template with the supplied field values. Every
// declared field must be present; unknown keys in values are rejected so
// typos surface instead of silently dropping content.
func (t Template) Instantiate(values map[string]string) ([]byte, error) {
	if missing := t.MissingFields(values); len(missing) > 0 {
		return nil, fmt.Errorf("blueprint: %s missing fields: %s", t.Name, strings.Join(missing, ", "))
	}
	declared := make(map[string]struct{}, len(t.Fields))
	for _, field := range t.Fields {
		declared[field] = struct{}{}
	}
	for key := range values {
		if _, ok := declared[key]; !ok {
			return nil, fmt.Errorf("blueprint: %s does not declare field %q", t.Name, key)
		}
	}

	tmpl, err := template.New(t.Name).Option("missingkey=error").Parse(string(t.body))
	if err != nil {
		return nil, fmt.Errorf("blueprint: parse %s: %w", t.Name, err)
	}
	data := make(map[string]string, len(values))
	for key, value := range values {
		data[key] = strings.TrimSpace(value)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("blueprint: render %s: %w", t.Name, err)
	}
	return buf.Bytes(), nil
}

// Render produces a complete output document: the instantiated body behind
// fresh frontmatter recording which template produced it.
func (t Template) Render(values map[string]string) (document.Document, error) {
	body, err := t.Instantiate(values)
	if err != nil {
		return document.Document{}, err
	}
	name := strings.TrimSpace(values["Title"])
	if name == "" {
		name = t.Name
	}
	return document.Document{
		Kind: document.KindGuide,
		Meta: document.Meta{
			Name:        name,
			Description: fmt.Sprintf("Generated from the %s template.", t.Name),
			Kind:        document.KindGuide,
		},
		Body: body,
	}, nil
}
