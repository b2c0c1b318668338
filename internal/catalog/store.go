package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/templates"
)

// Store owns one catalog session: the templates applicable to the selected
// element and the selection, expansion and filter state. State is reset on
// every Open. A Store is not safe for concurrent use.
type Store struct {
	source    TemplateSource
	inspector ElementInspector
	engine    Engine

	session     string
	elementType string
	applied     string
	templates   []templates.ElementTemplate

	selected string
	expanded string
	filter   FilterState
}

// NewStore creates a store reading from source and inspector.
func NewStore(source TemplateSource, inspector ElementInspector, opts ...EngineOption) *Store {
	return &Store{
		source:    source,
		inspector: inspector,
		engine:    NewEngine(opts...),
	}
}

// Open starts a new session for the currently selected element. Session
// state from a previous open is discarded even when Open fails.
func (s *Store) Open(ctx context.Context) error {
	s.reset()
	s.session = uuid.NewString()

	elementType, err := s.inspector.SelectedElementType(ctx)
	if err != nil {
		return fmt.Errorf("get selected element type: %w", err)
	}
	s.elementType = elementType
	s.templates = s.Load(ctx, elementType)

	applied, err := s.inspector.AppliedTemplate(ctx)
	if err != nil {
		return fmt.Errorf("get applied element template: %w", err)
	}
	s.applied = applied

	log.Debug(log.CatCatalog, "Catalog opened",
		"session", s.session,
		"elementType", elementType,
		"templates", len(s.templates),
		"applied", applied)
	return nil
}

// Load returns the templates applicable to elementType in source order.
// A failing source yields an empty list.
func (s *Store) Load(ctx context.Context, elementType string) []templates.ElementTemplate {
	all, err := s.source.ElementTemplates(ctx)
	if err != nil {
		log.ErrorErr(log.CatCatalog, "Template source unavailable", err, "elementType", elementType)
		return []templates.ElementTemplate{}
	}
	out := make([]templates.ElementTemplate, 0, len(all))
	for _, t := range all {
		if t.AppliesToType(elementType) {
			out = append(out, t)
		}
	}
	return out
}

// SetTemplates replaces the loaded list, dropping a selection or expansion
// that no longer refers to a loaded template.
func (s *Store) SetTemplates(list []templates.ElementTemplate) {
	s.templates = list
	if _, ok := s.find(s.selected); !ok {
		s.selected = ""
	}
	if _, ok := s.find(s.expanded); !ok {
		s.expanded = ""
	}
}

// Select marks id as selected. Ids that are not loaded are ignored and the
// previous selection stays.
func (s *Store) Select(id string) {
	if _, ok := s.find(id); !ok {
		log.Debug(log.CatCatalog, "Ignoring selection of unknown template", "id", id)
		return
	}
	s.selected = id
}

// ToggleExpanded expands id, or collapses it when it is already expanded.
// Only one description is expanded at a time.
func (s *Store) ToggleExpanded(id string) {
	if s.expanded == id {
		s.expanded = ""
		return
	}
	s.expanded = id
}

// ConfirmSelection returns the selected template.
func (s *Store) ConfirmSelection() (templates.ElementTemplate, bool) {
	if s.selected == "" {
		return templates.ElementTemplate{}, false
	}
	return s.find(s.selected)
}

// SetSearch sets the name search text.
func (s *Store) SetSearch(search string) {
	s.filter.Search = search
}

// SetTags replaces the tag filter.
func (s *Store) SetTags(tags []string) {
	s.filter.Tags = slices.Clone(tags)
}

// ToggleTag adds tag to the tag filter, or removes it when present.
func (s *Store) ToggleTag(tag string) {
	if i := slices.Index(s.filter.Tags, tag); i >= 0 {
		s.filter.Tags = slices.Delete(slices.Clone(s.filter.Tags), i, i+1)
		return
	}
	s.filter.Tags = append(slices.Clone(s.filter.Tags), tag)
}

// Templates returns the loaded, unfiltered templates.
func (s *Store) Templates() []templates.ElementTemplate { return s.templates }

// Visible returns the loaded templates passing the current filter.
func (s *Store) Visible() []templates.ElementTemplate {
	return s.engine.Filter(s.templates, s.filter)
}

// TagCounts counts the loaded templates per tag.
func (s *Store) TagCounts() map[string]int {
	return s.engine.TagCounts(s.templates)
}

// Selected returns the selected template id, or "".
func (s *Store) Selected() string { return s.selected }

// Expanded returns the expanded template id, or "".
func (s *Store) Expanded() string { return s.expanded }

// Applied returns the id of the template applied to the element, or "".
func (s *Store) Applied() string { return s.applied }

// Filter returns a copy of the current filter state.
func (s *Store) Filter() FilterState {
	return FilterState{Search: s.filter.Search, Tags: slices.Clone(s.filter.Tags)}
}

// ElementType returns the element type of the current session.
func (s *Store) ElementType() string { return s.elementType }

// Session returns the id of the current session.
func (s *Store) Session() string { return s.session }

func (s *Store) reset() {
	s.session = ""
	s.elementType = ""
	s.applied = ""
	s.templates = nil
	s.selected = ""
	s.expanded = ""
	s.filter = FilterState{}
}

func (s *Store) find(id string) (templates.ElementTemplate, bool) {
	if id == "" {
		return templates.ElementTemplate{}, false
	}
	for _, t := range s.templates {
		if t.ID == id {
			return t, true
		}
	}
	return templates.ElementTemplate{}, false
}
