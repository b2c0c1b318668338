// Package presentation converts templates into the shapes printed by the
// command line: JSON DTOs, aligned text tables and markdown summaries.
package presentation

import (
	"slices"
	"strings"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/templates"
)

// TemplateDTO represents an element template for presentation.
type TemplateDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Version     int      `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	AppliesTo   []string `json:"applies_to"`
	Tags        []string `json:"tags"`
	Catalog     string   `json:"catalog,omitempty"`
	Updated     string   `json:"updated,omitempty"`
	Source      string   `json:"source"`
}

// TagCountDTO is one row of the tag summary.
type TagCountDTO struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// FromTemplate converts a template to a DTO. Slices are never nil so the
// JSON output always carries arrays.
func FromTemplate(t templates.ElementTemplate) TemplateDTO {
	dto := TemplateDTO{
		ID:          t.ID,
		Name:        t.Name,
		Version:     t.Version,
		Description: t.Description,
		AppliesTo:   slices.Clone(t.AppliesTo),
		Tags:        slices.Clone(t.Tags()),
		Source:      t.Source,
	}
	if dto.AppliesTo == nil {
		dto.AppliesTo = []string{}
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	dto.Catalog, _ = t.Catalog()
	dto.Updated, _ = catalog.DisplayDate(t)
	return dto
}

// FromTemplates converts a slice of templates to DTOs.
func FromTemplates(list []templates.ElementTemplate) []TemplateDTO {
	dtos := make([]TemplateDTO, len(list))
	for i, t := range list {
		dtos[i] = FromTemplate(t)
	}
	return dtos
}

// FromTagCounts converts tag counts to rows sorted by tag name.
func FromTagCounts(counts map[string]int) []TagCountDTO {
	rows := make([]TagCountDTO, 0, len(counts))
	for tag, n := range counts {
		rows = append(rows, TagCountDTO{Tag: tag, Count: n})
	}
	slices.SortFunc(rows, func(a, b TagCountDTO) int { return strings.Compare(a.Tag, b.Tag) })
	return rows
}
