package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// AddTemplatePath appends dir to templates.paths in the config file unless
// it is already listed. Comments and formatting elsewhere are preserved.
// It reports whether the file changed.
func AddTemplatePath(configPath, dir string) (bool, error) {
	doc, err := readDocument(configPath)
	if err != nil {
		return false, err
	}

	templates := ensureMapping(rootMapping(doc), "templates")
	paths := lookup(templates, "paths")
	if paths == nil || paths.Kind != yaml.SequenceNode {
		paths = &yaml.Node{Kind: yaml.SequenceNode}
		setKey(templates, "paths", paths)
	}
	for _, item := range paths.Content {
		if item.Value == dir {
			return false, nil
		}
	}
	paths.Content = append(paths.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: dir})

	return true, WriteDocument(configPath, doc)
}

// SetFlag sets flags.<name> in the config file, preserving other content.
func SetFlag(configPath, name string, enabled bool) error {
	doc, err := readDocument(configPath)
	if err != nil {
		return err
	}

	flags := ensureMapping(rootMapping(doc), "flags")
	value := "false"
	if enabled {
		value = "true"
	}
	setKey(flags, name, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value})

	return WriteDocument(configPath, doc)
}

// WriteDocument encodes doc with two-space indentation and writes it
// atomically (write to temp, then rename).
func WriteDocument(path string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// readDocument parses the file into a yaml.Node, returning an empty
// document when the file does not exist.
func readDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the resolved config location
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	doc := &yaml.Node{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	return doc, nil
}

// rootMapping returns the top-level mapping, creating it for empty documents.
func rootMapping(doc *yaml.Node) *yaml.Node {
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	return doc.Content[0]
}

// ensureMapping returns the mapping stored under key, replacing any
// non-mapping value.
func ensureMapping(parent *yaml.Node, key string) *yaml.Node {
	if node := lookup(parent, key); node != nil && node.Kind == yaml.MappingNode {
		return node
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	setKey(parent, key, node)
	return node
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setKey replaces the value under key, or appends the pair.
func setKey(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			// Keep comments attached to the old value.
			value.HeadComment = mapping.Content[i+1].HeadComment
			value.LineComment = mapping.Content[i+1].LineComment
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = slices.Concat(mapping.Content, []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: key},
		value,
	})
}
