package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hillchart/pkg/chart"
	"github.com/matzehuels/hillchart/pkg/hill"
)

// defaultAddProgress is where new milestones start when no coordinate
// is given.
const defaultAddProgress = 0.1

// coordFlags holds the mutually exclusive --progress/--position pair.
type coordFlags struct {
	progress float64
	position float64
}

func (f *coordFlags) register(cmd *cobra.Command, progressDefault float64) {
	cmd.Flags().Float64VarP(&f.progress, "progress", "p", progressDefault, "progress between 0 and 1")
	cmd.Flags().Float64Var(&f.position, "position", 0, "raw position on the hill domain")
	cmd.MarkFlagsMutuallyExclusive("progress", "position")
}

func (c *CLI) addCommand() *cobra.Command {
	var coords coordFlags
	cmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add a milestone",
		Long: `Add a milestone to the chart. Multiple arguments are joined with spaces,
so quoting the label is optional. New milestones start at 10% unless
--progress or --position says otherwise.`,
		Example: `  hillchart add Research the problem space
  hillchart add "Ship v1" --progress 0.9`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			label := strings.Join(args, " ")
			var m hill.Marker
			if cmd.Flags().Changed("position") {
				m, err = ch.Add(cmd.Context(), label, coords.position)
			} else {
				m, err = ch.AddAt(cmd.Context(), label, coords.progress)
			}
			if m.ID == "" && err != nil {
				return err
			}
			printSuccess("Added %s", describeMarker(m))
			return err
		},
	}
	coords.register(cmd, defaultAddProgress)
	return cmd
}

func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "remove <id>",
		Aliases:           []string{"rm"},
		Short:             "Remove a milestone",
		Long:              `Remove a milestone by id or by a unique id prefix.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMarkerIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			m, err := ch.Remove(cmd.Context(), args[0])
			if m.ID == "" && err != nil {
				return err
			}
			printSuccess("Removed %s", describeMarker(m))
			return err
		},
	}
}

func (c *CLI) moveCommand() *cobra.Command {
	var coords coordFlags
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a milestone",
		Long: `Move a milestone as if it had been dragged there. The moved milestone gets
the highest priority, so it wins when it overlaps others.`,
		Example:           `  hillchart move 3f2a --progress 0.6`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMarkerIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			var m hill.Marker
			if cmd.Flags().Changed("position") {
				m, err = ch.Move(cmd.Context(), args[0], coords.position)
			} else {
				m, err = ch.MoveAt(cmd.Context(), args[0], coords.progress)
			}
			if m.ID == "" && err != nil {
				return err
			}
			printSuccess("Moved %s", describeMarker(m))
			reportPlacement(ch, m.ID)
			return err
		},
	}
	coords.register(cmd, 0)
	cmd.MarkFlagsOneRequired("progress", "position")
	return cmd
}

// reportPlacement explains where a marker ended up when the layout moved
// it off its raw position.
func reportPlacement(ch *chart.Chart, id string) {
	p, ok := ch.Frame().Placement(id)
	if !ok {
		return
	}
	if p.X != p.Marker.Position {
		printDetail("snapped to x=%.1f next to an overlapping milestone", p.X)
	}
	if p.Stacked() {
		printDetail("stacked at depth %d", p.Depth)
	}
}

func (c *CLI) nudgeCommand() *cobra.Command {
	var by float64
	cmd := &cobra.Command{
		Use:               "nudge <id>",
		Short:             "Shift a milestone label sideways",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMarkerIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			m, err := ch.Nudge(cmd.Context(), args[0], by)
			if m.ID == "" && err != nil {
				return err
			}
			printSuccess("Nudged %s label to offset %+.0f", StyleValue.Render(m.Label), m.LabelOffset)
			return err
		},
	}
	cmd.Flags().Float64Var(&by, "by", 0, "offset to add to the label position (negative moves left)")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List milestones",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			markers := ch.Markers()
			if len(markers) == 0 {
				printInfo("Chart %s has no milestones", StyleHighlight.Render(ch.Name()))
				printNextStep("Add one", `hillchart add "Research"`)
				return nil
			}
			fmt.Fprintln(stdout, StyleTitle.Render(ch.Name()))
			fmt.Fprintln(stdout, markerTable(markers, ch.Frame().Focus))
			return nil
		},
	}
}

func (c *CLI) clearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every milestone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, done, err := c.openChart(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if n := len(ch.Markers()); !yes && n > 0 {
				printWarning("This removes %d milestones from %s", n, ch.Name())
				return fmt.Errorf("refusing to clear without --yes")
			}
			n, err := ch.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Cleared %d milestones", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
