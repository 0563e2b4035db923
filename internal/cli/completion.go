package cli

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for convroute.

Bash:
  $ source <(convroute completion bash)

Zsh:
  $ convroute completion zsh > "${fpath[1]}/_convroute"

Fish:
  $ convroute completion fish > ~/.config/fish/completions/convroute.fish

PowerShell:
  PS> convroute completion powershell | Out-String | Invoke-Expression

Completing "convroute route" suggests the MIME types known to the active
configuration.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}

// completeMIME completes the FROM_MIME and TO_MIME arguments of the route
// command with the formats of the active configuration.
func (c *CLI) completeMIME(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), log.WarnLevel))
	e, _, err := c.newEngine(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, n := range e.Graph().Nodes() {
		if !strings.HasPrefix(n.MIME, toComplete) {
			continue
		}
		if n.Format.Name != "" {
			out = append(out, n.MIME+"\t"+n.Format.Name)
		} else {
			out = append(out, n.MIME)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
