// Package macro provides commands describing the available wiki macros.
package macro

import (
	"github.com/spf13/cobra"
)

// NewCmdMacro creates the macro command.
func NewCmdMacro() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "macro",
		Aliases: []string{"macros"},
		Short:   "Describe wiki macros",
		Long:    `Commands for listing the macros a document may use and showing their arguments.`,
	}

	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdShow())

	return cmd
}
