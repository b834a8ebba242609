package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// newSlotsCommand creates the 'filescout slots' parent command
func newSlotsCommand(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Manage saved search presets",
		Long: `Manage the five numbered search presets.

A preset stores every search option; 'filescout search --slot N' starts
from it.`,
	}

	cmd.AddCommand(newSlotsListCommand(ro))
	cmd.AddCommand(newSlotsShowCommand(ro))
	cmd.AddCommand(newSlotsSaveCommand(ro))
	cmd.AddCommand(newSlotsClearCommand(ro))

	return cmd
}

func slotNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid slot number %q", arg)
	}
	return n, nil
}

// describeSlot is a one-line summary of a preset
func describeSlot(slot types.SettingSlot) string {
	if slot.IsEmpty() {
		return "(empty)"
	}
	v := slot.Val
	desc := fmt.Sprintf("method=%s scope=%s", v.CustomSchMethod, v.SearchScope)
	if v.CustomFileContUse {
		desc += " content"
	}
	if v.CustomPropertyUse {
		opts, err := v.ToOptions()
		if err == nil && v.CustomFileSizeUse {
			desc += fmt.Sprintf(" size=%s..%s", humanize.Bytes(opts.SizeMin), humanize.Bytes(opts.SizeMax))
		}
		if v.CustomFileTypeUse {
			desc += " ext=" + v.FileTypeList
		}
	}
	return desc
}

func newSlotsListCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, ro, true)
			if err != nil {
				return err
			}
			defer a.Close()

			slots, err := a.Settings.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pal := newPalette(out, ro.noColor)
			for _, slot := range slots {
				pal.header.Fprintf(out, "%d ", slot.Number)
				pal.name.Fprintf(out, "%-20s", slot.Name)
				fmt.Fprintf(out, " %s\n", describeSlot(slot))
			}
			return nil
		},
	}
}

func newSlotsShowCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slot>",
		Short: "Print a slot as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := slotNumber(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd, ro, true)
			if err != nil {
				return err
			}
			defer a.Close()

			slot, err := a.Settings.Get(cmd.Context(), n)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(slot)
			if err != nil {
				return fmt.Errorf("encode slot: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newSlotsSaveCommand(ro *rootOptions) *cobra.Command {
	var (
		flags optionFlags
		name  string
	)

	cmd := &cobra.Command{
		Use:   "save <slot>",
		Short: "Store search options in a slot",
		Long: `Store search options in a slot. The slot is replaced by the defaults
plus the option flags given.

Example:
  filescout slots save 1 --name "big logs" --scope files --ext log --min-size 10MB`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := slotNumber(args[0])
			if err != nil {
				return err
			}

			val := types.DefaultSearchSettings()
			if err := flags.apply(cmd, &val); err != nil {
				return err
			}

			a, err := openApp(cmd, ro, true)
			if err != nil {
				return err
			}
			defer a.Close()

			slot, err := a.Settings.Save(cmd.Context(), n, name, val)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved slot %d: %s\n", slot.Number, describeSlot(slot))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "display name of the preset")

	return cmd
}

func newSlotsClearCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <slot>",
		Short: "Reset a slot to the defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := slotNumber(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd, ro, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.Settings.Clear(cmd.Context(), n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared slot %d\n", n)
			return nil
		},
	}
}
