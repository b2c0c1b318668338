package presentation

import (
	"fmt"
	"strings"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/templates"
)

// TemplateMarkdown renders a template summary as markdown for the show
// command.
func TemplateMarkdown(t templates.ElementTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	fmt.Fprintf(&b, "`%s`", t.ID)
	if t.Version > 0 {
		fmt.Fprintf(&b, " · version %d", t.Version)
	}
	b.WriteString("\n\n")

	if meta := catalog.Meta(t); meta != "" {
		fmt.Fprintf(&b, "*%s*\n\n", meta)
	}
	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n\n")
	}

	b.WriteString("## Applies to\n\n")
	for _, a := range t.AppliesTo {
		fmt.Fprintf(&b, "- `%s`\n", a)
	}

	if tags := t.Tags(); len(tags) > 0 {
		b.WriteString("\n## Tags\n\n")
		for _, tag := range tags {
			fmt.Fprintf(&b, "- %s\n", tag)
		}
	}

	if len(t.Properties) > 0 {
		b.WriteString("\n## Properties\n\n")
		b.WriteString("| label | type | value |\n|---|---|---|\n")
		for _, p := range t.Properties {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(p["label"]), cell(p["type"]), cell(p["value"]))
		}
	}

	if t.Source != "" {
		fmt.Fprintf(&b, "\nSource: `%s`\n", t.Source)
	}
	return b.String()
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	return strings.ReplaceAll(fmt.Sprint(v), "|", `\|`)
}
