// Package cli implements the convroute command-line interface.
//
// The commands load a configuration (an explicit --config file, the user's
// config file, or the registry built into the binary), build a route
// engine from it, and query or inspect the resulting format graph.
//
// # Commands
//
//   - route: List conversion routes between two MIME types, cheapest first
//   - graph: Dump the format graph as text, JSON, DOT or SVG
//   - rules: Show the effective category cost rules
//   - config: Print, locate or initialize the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and retrieved with loggerFromContext.
package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/convroute/pkg/buildinfo"
	"github.com/matzehuels/convroute/pkg/config"
	"github.com/matzehuels/convroute/pkg/observability"
	"github.com/matzehuels/convroute/pkg/search"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "convroute"

	// configFile is the file name looked up in the config directory.
	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "convroute finds conversion routes between file formats",
		Long: `convroute builds a weighted graph of the formats a set of conversion tools can
read and write, and finds the cheapest chains of tools that turn one format
into another.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetSearchHooks(searchLogHooks{logger: c.Logger})
			observability.SetCacheHooks(cacheLogHooks{logger: c.Logger})
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (default: user config, else built-in registry)")

	// Register all subcommands
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// loadConfig resolves the configuration: the --config file if given, the
// user config file if it exists, and the built-in registry otherwise.
func (c *CLI) loadConfig(ctx context.Context) (*config.Config, error) {
	logger := loggerFromContext(ctx)
	if c.configPath != "" {
		logger.Debug("loading config", "path", c.configPath)
		return config.Load(c.configPath)
	}
	if path, err := defaultConfigPath(); err == nil {
		if _, err := os.Stat(path); err == nil {
			logger.Debug("loading config", "path", path)
			return config.Load(path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	logger.Debug("using built-in registry")
	return config.Builtin()
}

// newEngine builds a route engine from the resolved configuration.
func (c *CLI) newEngine(ctx context.Context) (*search.Engine, *config.Config, error) {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.EngineOptions(logger)
	if err != nil {
		return nil, nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, nil, err
	}

	prog := newProgress(logger)
	e := search.New(opts...)
	if err := e.InitRegistry(ctx, reg, cfg.Graph.StrictCategories); err != nil {
		return nil, nil, err
	}
	g := e.Graph()
	prog.done("Built graph: " + fmtCount(g.NodeCount(), "format") + ", " + fmtCount(g.EdgeCount(), "conversion"))
	return e, cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/convroute/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// defaultConfigPath returns the user config file path.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or for stdout if path is empty.
func openOutput(stdout io.Writer, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}
