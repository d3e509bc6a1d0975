package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for hillchart.

To load completions:

Bash:
  $ source <(hillchart completion bash)

  # To load completions for each session, execute once:
  $ hillchart completion bash > /etc/bash_completion.d/hillchart

Zsh:
  # If shell completion is not already enabled in your environment,
  # enable it once with:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ hillchart completion zsh > "${fpath[1]}/_hillchart"

Fish:
  $ hillchart completion fish > ~/.config/fish/completions/hillchart.fish

PowerShell:
  PS> hillchart completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeMarkerIDs completes the first argument with marker ids from the
// selected chart, described by their labels.
func (c *CLI) completeMarkerIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ch, done, err := c.openChart(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer done()

	var out []string
	for _, m := range ch.Markers() {
		if strings.HasPrefix(m.ID, toComplete) {
			out = append(out, m.ID+"\t"+m.Label)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
