// Package completion provides the shell completion command.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Shells lists the shells a completion script can be generated for.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// NewCommand creates the completion command. It replaces cobra's generated one.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Generate a shell completion script",
		Long: `Generate the autocompletion script for the given shell.

To load completions in your current bash session:

  source <(ordersync completion bash)

To load them for every new session, write the script once:

  ordersync completion bash > /etc/bash_completion.d/ordersync
  ordersync completion zsh > "${fpath[1]}/_ordersync"
  ordersync completion fish > ~/.config/fish/completions/ordersync.fish`,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:             Shells,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Generate(cmd.Root(), cmd, args[0])
		},
	}
}

// Generate writes the completion script for shell to cmd's output.
func Generate(root, cmd *cobra.Command, shell string) error {
	out := cmd.OutOrStdout()
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, true)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}
}
