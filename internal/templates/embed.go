package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// builtinTemplates embeds the catalog shipped with the binary.
//
//go:embed builtin
var builtinTemplates embed.FS

// BuiltinFS returns the embedded builtin catalog.
func BuiltinFS() fs.FS {
	return builtinTemplates
}

// LoadBuiltin parses every template file of the builtin catalog, in file name order.
func LoadBuiltin() ([]ElementTemplate, error) {
	entries, err := fs.ReadDir(builtinTemplates, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin templates: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []ElementTemplate
	for _, entry := range entries {
		if entry.IsDir() || !IsTemplateFile(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(builtinTemplates, "builtin/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin template %s: %w", entry.Name(), err)
		}
		parsed, err := Parse(entry.Name(), data)
		if err != nil {
			return nil, err
		}
		for i := range parsed {
			parsed[i].Source = SourceBuiltin
		}
		out = append(out, parsed...)
	}
	return out, nil
}
