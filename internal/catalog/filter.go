package catalog

import (
	"strings"
	"time"

	"github.com/zjrosen/catalog/internal/templates"
)

const (
	// MaxDescriptionLength is the collapsed description limit, in characters.
	MaxDescriptionLength = 200
	// Ellipsis is appended to collapsed descriptions that were cut.
	Ellipsis = "..."
	// DateLayout is the display format for update dates.
	DateLayout = "2006-01-02"
)

// FilterState restricts the visible templates. Empty fields do not restrict.
type FilterState struct {
	Search string
	Tags   []string
}

// IsZero reports whether the filter restricts nothing.
func (f FilterState) IsZero() bool {
	return f.Search == "" && len(f.Tags) == 0
}

// Engine evaluates filters and tag counts. The zero value follows the
// first-tag catalog convention.
type Engine struct {
	allTags bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAllTags makes counts and tag filtering consider every tag of a
// template instead of only the first.
func WithAllTags() EngineOption {
	return func(e *Engine) { e.allTags = true }
}

// NewEngine creates a filter engine.
func NewEngine(opts ...EngineOption) Engine {
	var e Engine
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e Engine) tagsOf(t templates.ElementTemplate) []string {
	tags := t.Tags()
	if e.allTags {
		return tags
	}
	if len(tags) == 0 {
		return nil
	}
	return tags[:1]
}

// TagCounts counts templates per catalog tag. Templates without tags are
// not counted.
func (e Engine) TagCounts(list []templates.ElementTemplate) map[string]int {
	counts := make(map[string]int)
	for _, t := range list {
		seen := make(map[string]bool, 1)
		for _, tag := range e.tagsOf(t) {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			counts[tag]++
		}
	}
	return counts
}

// Filter returns the templates matching every active predicate, in input
// order. The input is never modified.
func (e Engine) Filter(list []templates.ElementTemplate, f FilterState) []templates.ElementTemplate {
	search := strings.ToLower(f.Search)
	out := make([]templates.ElementTemplate, 0, len(list))
	for _, t := range list {
		if len(f.Tags) > 0 && !e.matchesTags(t, f.Tags) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (e Engine) matchesTags(t templates.ElementTemplate, wanted []string) bool {
	for _, tag := range e.tagsOf(t) {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}

var defaultEngine Engine

// TagCounts counts templates by their first tag.
func TagCounts(list []templates.ElementTemplate) map[string]int {
	return defaultEngine.TagCounts(list)
}

// Filter applies f using the first-tag convention.
func Filter(list []templates.ElementTemplate, f FilterState) []templates.ElementTemplate {
	return defaultEngine.Filter(list, f)
}

// DisplayDate formats the template's update date as YYYY-MM-DD in UTC.
func DisplayDate(t templates.ElementTemplate) (string, bool) {
	updated, ok := t.Updated()
	if !ok {
		return "", false
	}
	return updated.In(time.UTC).Format(DateLayout), true
}

// IsTruncatable reports whether the description exceeds the collapsed limit.
func IsTruncatable(t templates.ElementTemplate) bool {
	return len([]rune(t.Description)) > MaxDescriptionLength
}

// TruncatedDescription returns the description to display. Only the
// template whose id equals expandedID is shown in full.
func TruncatedDescription(t templates.ElementTemplate, expandedID string) string {
	if t.ID == expandedID || !IsTruncatable(t) {
		return t.Description
	}
	runes := []rune(t.Description)
	return string(runes[:MaxDescriptionLength]) + Ellipsis
}

// Meta returns the "catalog | date" line shown under a template name.
func Meta(t templates.ElementTemplate) string {
	var parts []string
	if catalog, ok := t.Catalog(); ok {
		parts = append(parts, catalog)
	}
	if date, ok := DisplayDate(t); ok {
		parts = append(parts, date)
	}
	return strings.Join(parts, " | ")
}
