package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.True(t, cfg.Templates.Builtin, "builtin templates should be on by default")
	require.False(t, cfg.Templates.Watch)
	require.Equal(t, 300*time.Millisecond, cfg.Templates.WatchDebounce)
	require.Equal(t, 10*time.Minute, cfg.Templates.CacheTTL)
	require.True(t, cfg.UI.ShowDates)
	require.Equal(t, "dark", cfg.UI.MarkdownStyle)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.Empty(t, cfg.Workspace)

	require.NoError(t, Validate(cfg), "defaults should validate")
}

func TestValidateTemplates(t *testing.T) {
	require.NoError(t, ValidateTemplates(TemplatesConfig{Paths: []string{"./templates"}}))

	err := ValidateTemplates(TemplatesConfig{Paths: []string{"./a", ""}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "templates.paths[1]")

	err = ValidateTemplates(TemplatesConfig{WatchDebounce: -time.Second})
	require.Error(t, err)
	require.Contains(t, err.Error(), "watch_debounce")

	err = ValidateTemplates(TemplatesConfig{CacheTTL: -time.Second})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cache_ttl")
}

func TestValidateUI(t *testing.T) {
	require.NoError(t, ValidateUI(UIConfig{}))
	require.NoError(t, ValidateUI(UIConfig{MarkdownStyle: "light"}))

	err := ValidateUI(UIConfig{MarkdownStyle: "neon"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ui.markdown_style")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		tracing TracingConfig
		wantErr string
	}{
		{name: "empty", tracing: TracingConfig{}},
		{name: "disabled file without path", tracing: TracingConfig{Exporter: "file", SampleRate: 1}},
		{name: "sample rate too high", tracing: TracingConfig{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", tracing: TracingConfig{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "unknown exporter", tracing: TracingConfig{Exporter: "zipkin"}, wantErr: "tracing.exporter"},
		{name: "file requires path", tracing: TracingConfig{Enabled: true, Exporter: "file"}, wantErr: "file_path"},
		{name: "otlp requires endpoint", tracing: TracingConfig{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint"},
		{name: "enabled stdout", tracing: TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.tracing)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsFirstFailure(t *testing.T) {
	cfg := Defaults()
	cfg.UI.MarkdownStyle = "neon"
	cfg.Tracing.SampleRate = 7
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "markdown_style")
}

func TestDefaultConfigTemplate_IsValidYAML(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))

	templates, ok := parsed["templates"].(map[string]any)
	require.True(t, ok, "templates section should be present")
	require.Equal(t, true, templates["builtin"])
	require.Contains(t, parsed, "ui")
	require.True(t, strings.HasPrefix(DefaultConfigTemplate(), "# Catalog Configuration"))
}

func TestWriteDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
