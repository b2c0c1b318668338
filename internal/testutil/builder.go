// Package testutil builds template directories for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/catalog/internal/templates"
)

// Builder accumulates templates per file and writes them to a directory.
type Builder struct {
	t     *testing.T
	dir   string
	files map[string][]templates.ElementTemplate
	order []string
	round int
}

// NewBuilder creates a builder writing into a fresh temporary directory.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, dir: t.TempDir(), files: make(map[string][]templates.ElementTemplate)}
}

// Dir returns the template directory.
func (b *Builder) Dir() string { return b.dir }

// Path returns the full path of file inside the directory.
func (b *Builder) Path(file string) string { return filepath.Join(b.dir, file) }

// WithTemplate adds a template to file with optional configuration.
func (b *Builder) WithTemplate(file, id string, opts ...TemplateOption) *Builder {
	tmpl := defaultTemplate(id)
	for _, opt := range opts {
		opt(&tmpl)
	}
	if _, ok := b.files[file]; !ok {
		b.order = append(b.order, file)
	}
	b.files[file] = append(b.files[file], tmpl)
	return b
}

// Build writes every file and returns the directory. Calling Build again
// rewrites the files with a later modification time so caches keyed by
// mtime see the change.
func (b *Builder) Build() string {
	b.t.Helper()
	b.round++
	mtime := time.Now().Add(time.Duration(b.round) * time.Second)
	for _, file := range b.order {
		data, err := json.MarshalIndent(b.files[file], "", "  ")
		require.NoError(b.t, err)
		path := b.Path(file)
		require.NoError(b.t, os.WriteFile(path, data, 0o644))
		require.NoError(b.t, os.Chtimes(path, mtime, mtime))
	}
	return b.dir
}
