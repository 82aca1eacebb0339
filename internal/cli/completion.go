package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/edgepersist/pkg/graph"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for edgepersist.

Bash:
  $ source <(edgepersist completion bash)

Zsh:
  $ edgepersist completion zsh > "${fpath[1]}/_edgepersist"

Fish:
  $ edgepersist completion fish > ~/.config/fish/completions/edgepersist.fish

PowerShell:
  PS> edgepersist completion powershell | Out-String | Invoke-Expression

Besides commands and flags, the scripts complete --format values, directories
for location flags, TOML files for --config and counters files for hist.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
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

// registerCompletions attaches value completions to the subcommands of root.
// Flags a command does not define are ignored.
func registerCompletions(root *cobra.Command) {
	formats := []string{
		graph.FormatMatrixMarket + "\tcoordinate file with a size line, 1-based ids",
		graph.FormatEdgeList + "\tsrc dst pairs, 0-based ids",
	}
	for _, cmd := range root.Commands() {
		for _, name := range []string{"list-dir", "dir", "out-dir"} {
			if cmd.Flags().Lookup(name) != nil {
				_ = cmd.MarkFlagDirname(name)
			}
		}
		if cmd.Flags().Lookup("config") != nil {
			_ = cmd.MarkFlagFilename("config", "toml")
		}
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(formats, cobra.ShellCompDirectiveNoFileComp))
		}
		if cmd.Name() == "hist" {
			cmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
				if len(args) > 0 {
					return nil, cobra.ShellCompDirectiveNoFileComp
				}
				return []string{"bin"}, cobra.ShellCompDirectiveFilterFileExt
			}
		}
	}
}
