// Package cli implements the daygrid command-line interface.
//
// This package provides commands for computing calendar layouts and
// conflict reports from event feed files, rendering them as SVG or
// Graphviz diagrams, serving the engine over HTTP, and managing the
// local result cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute event rectangles for a feed and write JSON or SVG
//   - conflicts: Detect overlaps and write JSON or a conflict graph
//   - optimize: Re-run the position optimizer over existing layouts
//   - serve: Run the HTTP API with scheduled feed refresh
//   - preview: Browse a feed day by day in the terminal
//   - cache: Manage the local result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/daygrid/daygrid/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "daygrid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "daygrid",
		Short:        "Daygrid computes calendar event layouts and conflicts",
		Long:         `Daygrid is a calendar layout engine: it reads event feeds (JSON, YAML, ICS), stacks overlapping events into lanes on a month grid, classifies scheduling conflicts, and renders the result as JSON, SVG, or a conflict graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.conflictsCommand())
	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// cacheDir returns the cache directory using XDG standard (~/.cache/daygrid/).
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
