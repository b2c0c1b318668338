package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/catalog/internal/templates"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatTemplates writes templates as JSON.
func (f *Formatter) FormatTemplates(list []templates.ElementTemplate) error {
	return f.FormatJSON(FromTemplates(list))
}

const maxNameColumn = 32

// FormatTemplateTable writes one aligned row per template:
// id, name, catalog and update date.
func (f *Formatter) FormatTemplateTable(list []templates.ElementTemplate) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(f.writer, "No matching catalog templates found.")
		return err
	}
	dtos := FromTemplates(list)
	rows := make([][]string, 0, len(dtos)+1)
	rows = append(rows, []string{"ID", "NAME", "CATALOG", "UPDATED"})
	for _, d := range dtos {
		name := runewidth.Truncate(d.Name, maxNameColumn, "...")
		rows = append(rows, []string{d.ID, name, orDash(d.Catalog), orDash(d.Updated)})
	}
	return f.writeTable(rows)
}

// FormatTagTable writes tag counts as two aligned columns.
func (f *Formatter) FormatTagTable(counts []TagCountDTO) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(f.writer, "No tags.")
		return err
	}
	rows := [][]string{{"TAG", "COUNT"}}
	for _, c := range counts {
		rows = append(rows, []string{c.Tag, fmt.Sprint(c.Count)})
	}
	return f.writeTable(rows)
}

// writeTable pads cells by display width so wide runes stay aligned.
func (f *Formatter) writeTable(rows [][]string) error {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
			line.WriteString("  ")
		}
		if _, err := fmt.Fprintln(f.writer, line.String()); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
