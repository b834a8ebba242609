package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// newHistoryCommand creates the 'filescout history' command
func newHistoryCommand(ro *rootOptions) *cobra.Command {
	var (
		limit int
		prune int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently finished searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, ro, true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("prune") {
				removed, err := a.Storage.PruneRuns(ctx, prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "removed %d run(s)\n", removed)
				return nil
			}

			runs, err := a.Storage.ListRuns(ctx, limit)
			if err != nil {
				return err
			}

			pal := newPalette(out, ro.noColor)
			if len(runs) == 0 {
				fmt.Fprintln(out, "no searches recorded")
				return nil
			}
			for _, run := range runs {
				pal.dim.Fprintf(out, "%-16s ", humanize.Time(run.StartedAt))
				pal.name.Fprintf(out, "%-20s", run.Keyword)
				fmt.Fprintf(out, " %s ", run.Directory)
				pal.status(run.Status).Fprintf(out, "%s", run.Status)
				fmt.Fprintf(out, " results=%d cached=%d in %s\n",
					run.ResultCount, run.CacheHits, run.Duration().Round(time.Millisecond))
				if run.Error != "" {
					pal.fail.Fprintf(out, "    %s\n", run.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.Flags().IntVar(&prune, "prune", 0, "delete all but the newest N runs")

	return cmd
}
