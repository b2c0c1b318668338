// Package config provides configuration types and defaults for catalog.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/catalog/internal/log"
)

// Config holds all configuration options for catalog.
type Config struct {
	Workspace string          `mapstructure:"workspace"` // workspace YAML file; empty uses the sample
	Templates TemplatesConfig `mapstructure:"templates"`
	UI        UIConfig        `mapstructure:"ui"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Flags     map[string]bool `mapstructure:"flags"`
}

// TemplatesConfig controls where element templates come from.
type TemplatesConfig struct {
	// Paths are searched before the project and user template directories.
	Paths []string `mapstructure:"paths"`

	// Builtin appends the embedded template catalog. Default: true
	Builtin bool `mapstructure:"builtin"`

	// Watch reloads templates when files in the template directories change.
	Watch bool `mapstructure:"watch"`

	// WatchDebounce coalesces bursts of file events. Default: 300ms
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`

	// CacheTTL bounds how long a parsed template file is reused. Default: 10m
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowDates     bool   `mapstructure:"show_dates"`     // Show "catalog | date" meta lines
	MarkdownStyle string `mapstructure:"markdown_style"` // auto, dark (default), light, notty or ascii
}

// TracingConfig holds OpenTelemetry tracing configuration for host actions.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/catalog/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/catalog/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "catalog", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Templates: TemplatesConfig{
			Builtin:       true,
			Watch:         false,
			WatchDebounce: 300 * time.Millisecond,
			CacheTTL:      10 * time.Minute,
		},
		UI: UIConfig{
			ShowDates:     true,
			MarkdownStyle: "dark",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if err := ValidateTemplates(cfg.Templates); err != nil {
		return err
	}
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTemplates checks template source configuration for errors.
func ValidateTemplates(t TemplatesConfig) error {
	for i, p := range t.Paths {
		if p == "" {
			return fmt.Errorf("templates.paths[%d] must not be empty", i)
		}
	}
	if t.WatchDebounce < 0 {
		return fmt.Errorf("templates.watch_debounce must not be negative, got %s", t.WatchDebounce)
	}
	if t.CacheTTL < 0 {
		return fmt.Errorf("templates.cache_ttl must not be negative, got %s", t.CacheTTL)
	}
	return nil
}

// ValidateUI checks user interface configuration for errors.
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "auto", "dark", "light", "notty", "ascii":
		return nil
	default:
		return fmt.Errorf("ui.markdown_style must be one of auto, dark, light, notty or ascii, got %q", ui.MarkdownStyle)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Catalog Configuration

# Workspace file with diagram tabs and elements (default: built-in sample)
# workspace: ./diagram.workspace.yaml

# Element template sources
templates:
  # Extra template directories, searched first (JSON or YAML files)
  # paths:
  #   - ./templates
  #
  # Always searched afterwards:
  #   ./.catalog/templates
  #   ~/.config/catalog/templates
  builtin: true            # Append the templates shipped with catalog
  watch: false             # Reload when template files change
  # watch_debounce: 300ms
  # cache_ttl: 10m

# UI settings
ui:
  show_dates: true         # Show "catalog | date" under template names
  # markdown_style: dark   # Markdown style for 'catalog show': auto, dark (default), light, notty, ascii

# Tracing of host actions
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/catalog/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
# flags:
#   all-tags: false        # Filter and count by every tag, not only the catalog tag
#   copy-id: true          # Allow copying template ids to the clipboard
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
