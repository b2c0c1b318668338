// Package templates defines element templates and loads them from template
// directories and the builtin catalog.
package templates

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ElementTemplate is a reusable configuration bundle for diagram elements.
type ElementTemplate struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Version     int              `json:"version,omitempty" yaml:"version,omitempty"`
	AppliesTo   []string         `json:"appliesTo" yaml:"appliesTo"`
	Metadata    *Metadata        `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Properties  []map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Source      string           `json:"-" yaml:"-"` // file path or "builtin"
}

// Metadata holds optional catalog information. By convention the first tag
// names the catalog the template belongs to.
type Metadata struct {
	Tags    []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Updated *Timestamp `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// Tags returns the template's metadata tags, or nil.
func (t ElementTemplate) Tags() []string {
	if t.Metadata == nil {
		return nil
	}
	return t.Metadata.Tags
}

// Catalog returns the first metadata tag.
func (t ElementTemplate) Catalog() (string, bool) {
	tags := t.Tags()
	if len(tags) == 0 {
		return "", false
	}
	return tags[0], true
}

// Updated returns the last update time when present.
func (t ElementTemplate) Updated() (time.Time, bool) {
	if t.Metadata == nil || t.Metadata.Updated == nil {
		return time.Time{}, false
	}
	return t.Metadata.Updated.Time, true
}

// AppliesToType reports whether the template is valid for elementType.
func (t ElementTemplate) AppliesToType(elementType string) bool {
	for _, candidate := range t.AppliesTo {
		if candidate == elementType {
			return true
		}
	}
	return false
}

// Timestamp accepts epoch milliseconds or a date string when decoding.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseTimestamp parses epoch milliseconds or one of the supported date layouts.
func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}, fmt.Errorf("empty timestamp")
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Timestamp{Time: time.UnixMilli(ms).UTC()}, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: parsed}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unsupported timestamp %q", raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	switch v := value.(type) {
	case float64:
		*ts = Timestamp{Time: time.UnixMilli(int64(v)).UTC()}
		return nil
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*ts = parsed
		return nil
	default:
		return fmt.Errorf("unsupported timestamp value %s", string(data))
	}
}

// MarshalJSON encodes the timestamp as epoch milliseconds.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(ts.UnixMilli(), 10)), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (ts *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: timestamp must be a scalar", node.Line)
	}
	parsed, err := ParseTimestamp(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*ts = parsed
	return nil
}

// MarshalYAML encodes the timestamp as an RFC 3339 string.
func (ts Timestamp) MarshalYAML() (any, error) {
	return ts.UTC().Format(time.RFC3339), nil
}
