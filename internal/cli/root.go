package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/hillchart/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Hillchart tracks milestones on a hill chart",
		Long: `Hillchart places milestones on a hill: uphill while the problem is still
being figured out, downhill once the plan is being executed. Milestones
that would overlap are stacked or snapped together so every label stays
readable.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.flags.config, "config", "", "config file (default $XDG_CONFIG_HOME/hillchart/config.toml)")
	flags.StringVar(&c.flags.store, "store", "", "store backend: file, redis, mongo, memory")
	flags.StringVar(&c.flags.path, "path", "", "chart directory for the file store")
	flags.StringVar(&c.flags.chart, "chart", "", "chart name")

	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.nudgeCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.alignmentsCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
