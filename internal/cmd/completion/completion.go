// Package completion provides shell completion generation commands.
package completion

import (
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	display string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name:    "bash",
		display: "bash",
		install: `To load completions in your current shell session:

  source <(wmk completion bash)

To load completions for every new session:

  # Linux
  wmk completion bash > /etc/bash_completion.d/wmk

  # macOS (requires bash-completion)
  wmk completion bash > $(brew --prefix)/etc/bash_completion.d/wmk`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletionV2(w, true)
		},
	},
	{
		name:    "zsh",
		display: "zsh",
		install: `If shell completion is not already enabled in your environment,
enable it once with:

  echo "autoload -U compinit; compinit" >> ~/.zshrc

To load completions for every new session:

  wmk completion zsh > "${fpath[1]}/_wmk"`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
	},
	{
		name:    "fish",
		display: "fish",
		install: `To load completions in your current shell session:

  wmk completion fish | source

To load completions for every new session:

  wmk completion fish > ~/.config/fish/completions/wmk.fish`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
	},
	{
		name:    "powershell",
		display: "PowerShell",
		install: `To load completions in your current shell session:

  wmk completion powershell | Out-String | Invoke-Expression

To load completions for every new session, add the output to your profile:

  wmk completion powershell >> $PROFILE`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wmk.

These scripts enable tab-completion for commands, flags, and arguments.
See each sub-command's help for installation instructions.`,
	}

	for _, sh := range shells {
		cmd.AddCommand(newShellCmd(sh))
	}

	return cmd
}

func newShellCmd(sh shell) *cobra.Command {
	return &cobra.Command{
		Use:                   sh.name,
		Short:                 "Generate " + sh.display + " completion script",
		Long:                  "Generate " + sh.display + " completion script for wmk.\n\n" + sh.install,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
