package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/catalog/internal/app"
	"github.com/zjrosen/catalog/internal/config"
	"github.com/zjrosen/catalog/internal/flags"
	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/tracing"
	"github.com/zjrosen/catalog/internal/workspace"
)

func init() {
	// Query the terminal background before any program starts so the OSC 11
	// reply does not race with Bubble Tea's input loop.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	projectConfigPath = ".catalog/config.yaml"
	debugEnv          = "CATALOG_DEBUG"
	debugLogFile      = "catalog-debug.log"
)

var (
	version   = "dev"
	cfgFile   string
	debugMode bool
	logLevel  string
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and apply element templates",
	Long: `A terminal modeler with an element template catalog.

Select an element, press 'c' to open the catalog, filter by name or tag
and apply a template to the element.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		cleanup, err := initLogging()
		if err != nil {
			return err
		}
		logCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
		}
	},
	RunE: runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.catalog/config.yaml or ~/.config/catalog/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"write a debug log and enable the log overlay (ctrl+x)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug",
		"minimum level written to the debug log: debug, info, warn or error")
	rootCmd.PersistentFlags().StringP("workspace", "w", "",
		"workspace file with diagram tabs (default: built-in sample)")
	rootCmd.PersistentFlags().StringArray("templates", nil,
		"extra template directory, searched first (repeatable)")

	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
}

func initConfig() {
	cfg = config.Config{}
	defaults := config.Defaults()
	viper.SetDefault("templates.builtin", defaults.Templates.Builtin)
	viper.SetDefault("templates.watch", defaults.Templates.Watch)
	viper.SetDefault("templates.watch_debounce", defaults.Templates.WatchDebounce)
	viper.SetDefault("templates.cache_ttl", defaults.Templates.CacheTTL)
	viper.SetDefault("ui.show_dates", defaults.UI.ShowDates)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .catalog/config.yaml (current directory)
		// 2. ~/.config/catalog/config.yaml (user config)
		if _, err := os.Stat(projectConfigPath); err == nil {
			viper.SetConfigFile(projectConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "catalog"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// First run: write the commented default file and use it.
			if writeErr := config.WriteDefaultConfig(projectConfigPath); writeErr == nil {
				viper.SetConfigFile(projectConfigPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// configPath returns the file settings are saved to.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return projectConfigPath
}

// initLogging enables the file logger for --debug or CATALOG_DEBUG.
func initLogging() (func(), error) {
	if !debugMode && os.Getenv(debugEnv) == "" {
		return func() {}, nil
	}
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	debugMode = true
	path := os.Getenv(debugEnv)
	if path == "" || path == "1" || path == "true" {
		path = debugLogFile
	}
	cleanup, err := log.Init(path)
	if err != nil {
		return nil, fmt.Errorf("initializing debug log: %w", err)
	}
	log.SetMinLevel(level)
	log.Info(log.CatConfig, "Debug logging enabled", "path", path, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

// runtime bundles the services shared by the TUI and the subcommands.
type runtime struct {
	cfg       config.Config
	flags     *flags.Registry
	loader    *templates.Loader
	workspace *workspace.Workspace
	host      *host.Host
	tracing   *tracing.Provider
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	extra, _ := cmd.Flags().GetStringArray("templates")
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	loader := templates.NewLoader(templates.LoaderConfig{
		Paths:    templates.SearchPaths(append(extra, cfg.Templates.Paths...), cwd),
		Builtin:  cfg.Templates.Builtin,
		CacheTTL: cfg.Templates.CacheTTL,
	})

	ws := workspace.Sample()
	if cfg.Workspace != "" {
		ws, err = workspace.Load(cfg.Workspace)
		if err != nil {
			return nil, err
		}
	}

	tcfg := tracing.FromConfig(cfg.Tracing)
	tcfg.ServiceVersion = version
	if tcfg.FilePath == "" {
		tcfg.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tcfg)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	rt := &runtime{
		cfg:       cfg,
		flags:     flags.New(cfg.Flags),
		loader:    loader,
		workspace: ws,
		host:      host.New(loader, ws),
		tracing:   provider,
	}
	rt.host.Use(tracing.NewActionMiddleware(rt.tracer()), host.LoggingMiddleware())
	return rt, nil
}

// tracer returns nil when tracing is off so spans are skipped entirely.
func (r *runtime) tracer() trace.Tracer {
	if !r.tracing.Enabled() {
		return nil
	}
	return r.tracing.Tracer()
}

func (r *runtime) Close() {
	if err := r.tracing.Shutdown(context.Background()); err != nil {
		log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
	}
}

func runApp(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	zone.NewGlobal()

	model := app.New(app.Options{
		Host:      rt.host,
		Loader:    rt.loader,
		Config:    rt.cfg,
		Flags:     rt.flags,
		Tracer:    rt.tracer(),
		DebugMode: debugMode,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
