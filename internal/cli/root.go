// Package cli implements the filescout command line.
//
// Every command opens the same components the MCP server uses (see package
// app), configured from <home>/config.yaml with the global flags applied on
// top. Running filescout without a sub-command starts the MCP server.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/filescout-mcp/internal/app"
	"github.com/dshills/filescout-mcp/internal/config"
)

// Version and BuildTime are injected by the binary
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// rootOptions holds the global flags
type rootOptions struct {
	home      string
	logLevel  string
	devBuild  bool
	maxScans  int
	cachePath string
	noColor   bool
}

// NewRootCommand creates and returns the root cobra command for filescout
func NewRootCommand() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "filescout",
		Short: "Concurrent, cancellable file search",
		Long: `filescout searches directory trees for files and directories whose
names (and optionally contents) match a keyword, using substring, regex,
Damerau-Levenshtein or Jaccard matching with optional size, date, owner
and extension filters.

Without a sub-command it serves the search engine over MCP on stdio.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the returned error
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ro)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&ro.home, "home", "", "filescout home directory (default $FILESCOUT_HOME or ~/.filescout)")
	flags.StringVar(&ro.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&ro.devBuild, "dev-build", false, "skip the owner-lookup elevation request")
	flags.IntVar(&ro.maxScans, "max-scans", 0, "directories scanned at once")
	flags.StringVar(&ro.cachePath, "cache-path", "", "result cache file")
	flags.BoolVar(&ro.noColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(newServeCommand(ro))
	cmd.AddCommand(newSearchCommand(ro))
	cmd.AddCommand(newCacheCommand(ro))
	cmd.AddCommand(newSlotsCommand(ro))
	cmd.AddCommand(newHistoryCommand(ro))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// loadConfig reads the configuration of the selected home directory and
// applies the global flags that were set
func loadConfig(cmd *cobra.Command, ro *rootOptions) (*config.Config, error) {
	home := ro.home
	if home == "" {
		h, err := config.GetHome()
		if err != nil {
			return nil, err
		}
		home = h
	} else if err := os.MkdirAll(home, 0755); err != nil {
		return nil, fmt.Errorf("create home directory: %w", err)
	}

	cfg, err := config.LoadConfig(config.ConfigPath(home))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var (
		logLevel  *string
		maxScans  *int
		cachePath *string
		devBuild  *bool
	)
	if flags.Changed("log-level") {
		logLevel = &ro.logLevel
	}
	if flags.Changed("max-scans") {
		maxScans = &ro.maxScans
	}
	if flags.Changed("cache-path") {
		abs, err := filepath.Abs(ro.cachePath)
		if err != nil {
			return nil, fmt.Errorf("resolve cache path: %w", err)
		}
		cachePath = &abs
	}
	if flags.Changed("dev-build") {
		devBuild = &ro.devBuild
	}
	cfg.MergeWithFlags(logLevel, maxScans, cachePath, devBuild)
	cfg.ResolvePaths(home)

	return cfg, nil
}

// openApp loads the configuration and opens every component. Interactive
// commands log warnings only unless a level was requested.
func openApp(cmd *cobra.Command, ro *rootOptions, interactive bool) (*app.App, error) {
	cfg, err := loadConfig(cmd, ro)
	if err != nil {
		return nil, err
	}

	logger := app.NewLogger(cfg, cmd.ErrOrStderr())
	if interactive && !cmd.Flags().Changed("log-level") {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	return app.Open(cmd.Context(), cfg, logger)
}
