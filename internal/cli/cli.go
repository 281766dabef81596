// Package cli implements the mavcrawl command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavcrawl/internal/config"
	"github.com/matzehuels/mavcrawl/pkg/buildinfo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mavcrawl"
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
	repository string
	storeName  string
	cfg        *config.Config
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
		Use:          appName,
		Short:        "mavcrawl crawls Maven repositories into a dependency graph",
		Long:         `mavcrawl walks a Maven-layout repository, resolves each artifact's descriptor and direct transitive dependencies, and stores the result as a graph of records linked by dependency, parent and module relations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/mavcrawl/config.toml)")
	flags.StringVarP(&c.repository, "repository", "r", "", "repository preset or configured name")
	flags.StringVar(&c.storeName, "store", "", "store backend: memory, file or mongo")

	root.AddCommand(c.crawlCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.probeCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
