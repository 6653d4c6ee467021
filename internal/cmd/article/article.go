// Package article provides article-related commands.
package article

import (
	"github.com/spf13/cobra"
)

// NewCmdArticle creates the article command.
func NewCmdArticle() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "article",
		Aliases: []string{"articles"},
		Short:   "Work with wiki articles",
		Long:    `Commands for fetching wiki articles and rendering their current revision.`,
	}

	cmd.AddCommand(NewCmdView())

	return cmd
}
