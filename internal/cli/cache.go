package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCacheCommand creates the 'filescout cache' parent command
func newCacheCommand(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
	}

	cmd.AddCommand(newCacheListCommand(ro))
	cmd.AddCommand(newCacheClearCommand(ro))

	return cmd
}

func newCacheListCommand(ro *rootOptions) *cobra.Command {
	var showPaths bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, ro, true)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Cache.Entries()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pal := newPalette(out, ro.noColor)
			pal.header.Fprintf(out, "%d of %d cache entries (%s)\n", len(entries), a.Cache.Capacity(), a.Cache.Path())
			for _, e := range entries {
				pal.name.Fprintf(out, "%-24s", e.Keyword)
				fmt.Fprintf(out, " hits=%-4d results=%-5d method=%s scope=%s\n",
					e.Hit, len(e.Results), e.Options.CustomSchMethod, e.Options.SearchScope)
				if showPaths {
					for _, p := range e.Results {
						pal.dim.Fprintf(out, "    %s\n", p)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPaths, "paths", false, "also print the cached paths")
	return cmd
}

func newCacheClearCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, ro, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
}
