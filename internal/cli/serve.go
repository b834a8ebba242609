package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dshills/filescout-mcp/internal/mcp"
	"github.com/dshills/filescout-mcp/internal/storage"
)

// newServeCommand creates the 'filescout serve' command
func newServeCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search engine over MCP on stdio",
		Long: `Serve the search engine over the Model Context Protocol on stdin/stdout.

Logs go to stderr; stdout carries the protocol. This is also what runs
when filescout is started without a sub-command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ro)
		},
	}
}

// runServe runs the MCP server until the input closes or the command
// context is cancelled
func runServe(cmd *cobra.Command, ro *rootOptions) error {
	a, err := openApp(cmd, ro, false)
	if err != nil {
		return err
	}
	defer a.Close()

	mcp.ServerVersion = Version
	server, err := mcp.NewServer(a)
	if err != nil {
		return err
	}

	a.Logger.Info("filescout MCP server starting",
		"version", Version,
		"build_mode", storage.BuildMode,
		"driver", storage.DriverName)

	err = server.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		a.Logger.Info("server stopped")
		return nil
	}
	return err
}
