// Package cli implements the mysterygraph command-line interface.
//
// # Commands
//
//   - validate: report the findings of a mystery document
//   - graph: write the derived graph as JSON
//   - render: draw the graph as SVG, PNG, PDF, DOT or a JSON layout
//   - inspect: browse nodes or findings in an interactive terminal view
//   - convert: re-encode a document as YAML, JSON or TOML
//   - serve: run the HTTP API
//   - cache: manage the local render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// also attached to the command context for progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mysterygraph/internal/config"
	"github.com/matzehuels/mysterygraph/pkg/buildinfo"
	"github.com/matzehuels/mysterygraph/pkg/cache"
	"github.com/matzehuels/mysterygraph/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "mysterygraph"

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

	// ConfigPath is the --config flag. Empty selects the default location.
	ConfigPath string
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
		Short: "mysterygraph checks escape-room mysteries and draws their puzzle graph",
		Long: `mysterygraph validates escape-room mystery documents and turns them into a
graph of interactables and keys.

A document lists interactables, the keys they require and what completing
them hands out. mysterygraph reports structural defects (duplicate ids,
missing start or goal, dangling references, unreachable islands) and draws
valid documents as force-directed Graphviz diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/mysterygraph/config.toml)")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config or the default one.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.ConfigPath)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mysterygraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
