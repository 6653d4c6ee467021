// Package root provides the root command for the wmk CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/article"
	"github.com/open-cli-collective/wikimark/internal/cmd/completion"
	"github.com/open-cli-collective/wikimark/internal/cmd/configcmd"
	initcmd "github.com/open-cli-collective/wikimark/internal/cmd/init"
	"github.com/open-cli-collective/wikimark/internal/cmd/macro"
	"github.com/open-cli-collective/wikimark/internal/cmd/rendercmd"
	"github.com/open-cli-collective/wikimark/internal/version"
)

// NewCmdRoot creates the root command for wmk.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wmk",
		Short: "Render wiki markdown with images, macros and PubMed references",
		Long: `wmk renders wiki markdown to HTML.

Documents may contain image directives ([image:12 align:right]), macros
([article_list depth:2], [TOC]) and references ([REF id::a pmid::123]).
References are numbered in order of appearance, enriched from PubMed and
listed wherever [REFLIST] appears.

Get started by running: wmk init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/wmk/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output")

	cmd.SetVersionTemplate("wmk version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(rendercmd.NewCmdRender())
	cmd.AddCommand(rendercmd.NewCmdRefs())
	cmd.AddCommand(macro.NewCmdMacro())
	cmd.AddCommand(article.NewCmdArticle())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
