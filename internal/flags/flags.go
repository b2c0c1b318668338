// Package flags holds the catalog's feature flags. Only flags listed in
// Known exist; configuration may override their defaults.
package flags

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/zjrosen/catalog/internal/log"
)

const (
	// FlagAllTags makes catalog filtering and tag counts consider every
	// metadata tag instead of only the first one (the catalog name).
	FlagAllTags = "all-tags"

	// FlagCopyID enables copying the highlighted template id with "y".
	FlagCopyID = "copy-id"
)

// ErrUnknownFlag is returned by Lookup callers for names not in Known.
var ErrUnknownFlag = errors.New("unknown feature flag")

// Definition describes one feature flag.
type Definition struct {
	Name        string
	Description string
	Default     bool
}

var known = []Definition{
	{Name: FlagAllTags, Description: "Filter and count templates by every tag, not only the catalog tag"},
	{Name: FlagCopyID, Description: "Copy the highlighted template id with y", Default: true},
}

// Known returns every flag definition sorted by name.
func Known() []Definition {
	out := slices.Clone(known)
	slices.SortFunc(out, func(a, b Definition) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Lookup returns the definition of name.
func Lookup(name string) (Definition, error) {
	i := slices.IndexFunc(known, func(d Definition) bool { return d.Name == name })
	if i < 0 {
		names := make([]string, 0, len(known))
		for _, d := range Known() {
			names = append(names, d.Name)
		}
		return Definition{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownFlag, name, strings.Join(names, ", "))
	}
	return known[i], nil
}

// Registry resolves flags against configured overrides.
type Registry struct {
	overrides map[string]bool
}

// New creates a Registry from the config's flags section. Overrides for
// names not in Known are kept but logged, since they have no effect.
func New(overrides map[string]bool) *Registry {
	r := &Registry{overrides: maps.Clone(overrides)}
	for name := range overrides {
		if _, err := Lookup(name); err != nil {
			log.Warn(log.CatConfig, "Ignoring unknown feature flag", "flag", name)
		}
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "flags", r.All())
	return r
}

// Enabled reports whether name is on. Unknown names are off. Nil-safe.
func (r *Registry) Enabled(name string) bool {
	def, err := Lookup(name)
	if err != nil {
		return false
	}
	if r == nil {
		return def.Default
	}
	if v, ok := r.overrides[name]; ok {
		return v
	}
	return def.Default
}

// All returns the resolved state of every known flag.
func (r *Registry) All() map[string]bool {
	out := make(map[string]bool, len(known))
	for _, d := range known {
		out[d.Name] = r.Enabled(d.Name)
	}
	return out
}
