package macro

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/md"
)

type listOptions struct {
	output  string
	noColor bool
	stdout  io.Writer
}

// NewCmdList creates the macro list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available macros",
		Example: `  # List macros
  wmk macro list

  # As JSON
  wmk macro list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig(cmd, false)
			if err != nil {
				return err
			}
			opts.output = cmdutil.OutputFormat(cmd, cfg)
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()
			return runList(opts, md.NewMacroRegistry())
		},
	}

	return cmd
}

func runList(opts *listOptions, registry *md.MacroRegistry) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	if opts.stdout != nil {
		renderer.SetWriter(opts.stdout)
	} else {
		renderer.SetWriter(os.Stdout)
	}

	headers := []string{"NAME", "DESCRIPTION", "EXAMPLE"}
	var rows [][]string
	for _, mt := range registry.List() {
		rows = append(rows, []string{mt.Name, mt.Meta.ShortDescription, mt.Meta.ExampleCode})
	}
	renderer.RenderTable(headers, rows)
	return nil
}
