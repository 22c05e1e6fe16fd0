// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for sheetcanvas.

Install instructions:
  Bash:       sheetcanvas completion bash > /etc/bash_completion.d/sheetcanvas
              echo 'source <(sheetcanvas completion bash)' >> ~/.bashrc
  Zsh:        sheetcanvas completion zsh > ~/.zsh/completions/_sheetcanvas
  Fish:       sheetcanvas completion fish > ~/.config/fish/completions/sheetcanvas.fish
  PowerShell: sheetcanvas completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				fmt.Fprintln(out, "# sheetcanvas bash completion")
				fmt.Fprintln(out, "# Install: sheetcanvas completion bash > /etc/bash_completion.d/sheetcanvas")
				fmt.Fprintln(out)
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				fmt.Fprintln(out, "# sheetcanvas zsh completion")
				fmt.Fprintln(out, "# Install: sheetcanvas completion zsh > ~/.zsh/completions/_sheetcanvas")
				fmt.Fprintln(out)
				return rootCmd.GenZshCompletion(out)
			case "fish":
				fmt.Fprintln(out, "# sheetcanvas fish completion")
				fmt.Fprintln(out)
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				fmt.Fprintln(out, "# sheetcanvas PowerShell completion")
				fmt.Fprintln(out)
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
