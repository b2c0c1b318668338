package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/catalog/internal/log"
)

var textPolicy = bluemonday.StrictPolicy()

// Parse decodes template data according to the file extension of name.
// JSON and YAML documents may hold a single template or a list.
func Parse(name string, data []byte) ([]ElementTemplate, error) {
	var (
		parsed []ElementTemplate
		err    error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		parsed, err = parseJSON(data)
	case ".yaml", ".yml":
		parsed, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported template file %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	out := make([]ElementTemplate, 0, len(parsed))
	for i, tmpl := range parsed {
		tmpl = normalize(tmpl)
		if err := validate(tmpl); err != nil {
			return nil, fmt.Errorf("parse %s: template %d: %w", name, i, err)
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// IsTemplateFile reports whether name has a supported extension.
func IsTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func parseJSON(data []byte) ([]ElementTemplate, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []ElementTemplate
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var single ElementTemplate
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []ElementTemplate{single}, nil
}

func parseYAML(data []byte) ([]ElementTemplate, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []ElementTemplate
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var single ElementTemplate
	if err := root.Decode(&single); err != nil {
		return nil, err
	}
	return []ElementTemplate{single}, nil
}

// normalize strips markup from display text and trims whitespace.
func normalize(t ElementTemplate) ElementTemplate {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = sanitizeName(t.ID, t.Name)
	t.Description = sanitizeText(t.Description)
	if t.Metadata != nil {
		tags := make([]string, 0, len(t.Metadata.Tags))
		for _, tag := range t.Metadata.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		t.Metadata.Tags = tags
	}
	return t
}

// sanitizeName cleans a name like any display text and collapses the gaps
// removed markup leaves behind. Names that lose text are logged.
func sanitizeName(id, name string) string {
	clean := strings.Join(strings.Fields(sanitizeText(name)), " ")
	if clean != strings.Join(strings.Fields(html.UnescapeString(name)), " ") {
		log.Warn(log.CatTemplates, "Markup removed from template name", "id", id, "name", name, "shown", clean)
	}
	return clean
}

func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func validate(t ElementTemplate) error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("%s: name is required", t.ID)
	}
	if len(t.AppliesTo) == 0 {
		return fmt.Errorf("%s: appliesTo is required", t.ID)
	}
	return nil
}
