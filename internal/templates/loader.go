package templates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/zjrosen/catalog/internal/cachemanager"
	"github.com/zjrosen/catalog/internal/log"
)

// SourceBuiltin marks templates that come from the embedded catalog.
const SourceBuiltin = "builtin"

// ErrTemplateNotFound is returned by Find for unknown ids.
var ErrTemplateNotFound = errors.New("template not found")

// DefaultCacheTTL is used when LoaderConfig.CacheTTL is zero.
const DefaultCacheTTL = 10 * time.Minute

// SearchPaths returns template directories in precedence order: extra paths
// first, then the project directory, then the user config directory.
func SearchPaths(extra []string, projectDir string) []string {
	paths := make([]string, 0, len(extra)+2)
	paths = append(paths, extra...)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".catalog", "templates"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "catalog", "templates"))
	}
	return paths
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Paths     []string      // directories in precedence order
	Builtin   bool          // append the embedded catalog
	CacheTTL  time.Duration // per-file cache lifetime
	SkipCache bool
}

type fileInput struct {
	path string
}

// Loader discovers and parses element templates. Parsed files are cached
// by path and modification time.
type Loader struct {
	cfg   LoaderConfig
	cache *cachemanager.InMemoryCacheManager[string, []ElementTemplate]
	files *cachemanager.ReadThroughCache[string, []ElementTemplate, fileInput]
}

// NewLoader creates a loader for cfg.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	cache := cachemanager.NewInMemoryCacheManager[string, []ElementTemplate]("template-files", cfg.CacheTTL, cachemanager.DefaultCleanupInterval)
	l := &Loader{cfg: cfg, cache: cache}
	l.files = cachemanager.NewReadThroughCache(cachemanager.CacheManager[string, []ElementTemplate](cache), l.readFile, cfg.SkipCache)
	return l
}

// Paths returns the configured search directories.
func (l *Loader) Paths() []string {
	return append([]string(nil), l.cfg.Paths...)
}

// Load returns every template reachable from the search paths followed by
// the builtin catalog. The first template seen for an id wins; later
// duplicates are logged and dropped. Unparseable files are skipped.
func (l *Loader) Load(ctx context.Context) ([]ElementTemplate, error) {
	seen := make(map[string]string)
	var out []ElementTemplate

	add := func(list []ElementTemplate) {
		for _, tmpl := range list {
			if prev, dup := seen[tmpl.ID]; dup {
				log.Warn(log.CatTemplates, "Duplicate template id ignored", "id", tmpl.ID, "source", tmpl.Source, "kept", prev)
				continue
			}
			seen[tmpl.ID] = tmpl.Source
			out = append(out, tmpl)
		}
	}

	for _, dir := range l.cfg.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		list, err := l.loadDir(ctx, dir)
		if err != nil {
			return nil, err
		}
		add(list)
	}

	if l.cfg.Builtin {
		builtin, err := LoadBuiltin()
		if err != nil {
			return nil, err
		}
		add(builtin)
	}

	log.Debug(log.CatTemplates, "Templates loaded", "count", len(out), "paths", len(l.cfg.Paths))
	return out, nil
}

// Find loads templates and returns the one with id.
func (l *Loader) Find(ctx context.Context, id string) (ElementTemplate, error) {
	all, err := l.Load(ctx)
	if err != nil {
		return ElementTemplate{}, err
	}
	for _, tmpl := range all {
		if tmpl.ID == id {
			return tmpl, nil
		}
	}
	return ElementTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

// Invalidate drops the cached parse of path.
func (l *Loader) Invalidate(ctx context.Context, path string) {
	if err := l.files.Forget(ctx, path); err != nil {
		log.ErrorErr(log.CatCache, "Failed to invalidate template file", err, "path", path)
	}
}

// InvalidateAll drops every cached file parse.
func (l *Loader) InvalidateAll(ctx context.Context) {
	if err := l.files.ForgetAll(ctx); err != nil {
		log.ErrorErr(log.CatCache, "Failed to flush template cache", err)
	}
}

// CacheStats exposes the file cache counters.
func (l *Loader) CacheStats() cachemanager.Stats {
	return l.cache.Stats()
}

func (l *Loader) loadDir(ctx context.Context, dir string) ([]ElementTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read template directory %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []ElementTemplate
	for _, entry := range entries {
		if entry.IsDir() || !IsTemplateFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			log.ErrorErr(log.CatTemplates, "Failed to stat template file", err, "path", path)
			continue
		}

		key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
		list, err := l.files.Get(ctx, path, key, fileInput{path: path}, l.cfg.CacheTTL)
		if err != nil {
			log.ErrorErr(log.CatTemplates, "Skipping invalid template file", err, "path", path)
			continue
		}
		out = append(out, list...)
	}
	return out, nil
}

func (l *Loader) readFile(_ context.Context, in fileInput) ([]ElementTemplate, error) {
	data, err := os.ReadFile(in.path) //nolint:gosec // G304: template directories are user configured
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in.path, err)
	}
	list, err := Parse(in.path, data)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Source = in.path
	}
	return list, nil
}

// Suggest returns up to limit ids closest to id by edit distance.
func Suggest(list []ElementTemplate, id string, limit int) []string {
	type scored struct {
		id   string
		dist int
	}
	maxDist := len(id)/2 + 1
	candidates := make([]scored, 0, len(list))
	for _, tmpl := range list {
		d := levenshtein.ComputeDistance(id, tmpl.ID)
		if d <= maxDist {
			candidates = append(candidates, scored{id: tmpl.ID, dist: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}
