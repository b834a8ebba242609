package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/filescout-mcp/internal/searcher"
	"github.com/dshills/filescout-mcp/pkg/types"
)

// newSearchCommand creates the 'filescout search' command
func newSearchCommand(ro *rootOptions) *cobra.Command {
	var (
		flags  optionFlags
		slot   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <keyword> <directory>",
		Short: "Search a directory tree",
		Long: `Search a directory tree and print matches as they are found.

Options start from the defaults, or from a saved slot with --slot; flags
given on the command line override them. Ctrl-C cancels the search and
keeps the results printed so far.

Examples:
  # Files whose name contains "report"
  filescout search report ~/docs --scope files

  # Regex over names and text contents, logs only
  filescout search 'err(or)?' /var/log --method regex --content --ext log

  # Fuzzy match with the preset saved in slot 2
  filescout search recieve . --slot 2 --method dl`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, ro, &flags, slot, asJSON, args[0], args[1])
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&slot, "slot", 0, "start from the options saved in this settings slot (1-5)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per match")

	return cmd
}

// runSearch executes the search command
func runSearch(cmd *cobra.Command, ro *rootOptions, flags *optionFlags, slot int, asJSON bool, keyword, dir string) error {
	a, err := openApp(cmd, ro, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	settings := types.DefaultSearchSettings()
	if cmd.Flags().Changed("slot") {
		saved, err := a.Settings.Get(ctx, slot)
		if err != nil {
			return err
		}
		settings = saved.Val
	}
	if err := flags.apply(cmd, &settings); err != nil {
		return err
	}
	opts, err := settings.ToOptions()
	if err != nil {
		return err
	}

	sink := &printSink{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		pal:    newPalette(cmd.OutOrStdout(), ro.noColor),
		json:   asJSON,
	}

	run, err := a.Engine.Start(ctx, searcher.Request{
		Keyword:   keyword,
		Directory: dir,
		Options:   opts,
	}, sink)
	if err != nil {
		return err
	}

	select {
	case <-run.Done():
	case <-ctx.Done():
		// Interrupted; the process may have finished in the meantime
		_ = a.Engine.Cancel(run.ID())
	}

	outcome, err := run.Wait()
	if err != nil {
		return err
	}
	if outcome.Cancelled {
		sink.pal.warn.Fprintf(cmd.ErrOrStderr(), "search cancelled after %d result(s)\n", len(outcome.Results))
	}
	return nil
}
