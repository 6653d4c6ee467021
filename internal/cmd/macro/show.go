package macro

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/md"
)

type showOptions struct {
	output  string
	noColor bool
	stdout  io.Writer
}

// NewCmdShow creates the macro show command.
func NewCmdShow() *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a macro's help and arguments",
		Example: `  # Show the article_list macro
  wmk macro show article_list`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.LoadConfig(cmd, false)
			if err != nil {
				return err
			}
			opts.output = cmdutil.OutputFormat(cmd, cfg)
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()
			return runShow(args[0], opts, md.NewMacroRegistry())
		},
	}

	return cmd
}

type macroJSON struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Help        string            `json:"help"`
	Example     string            `json:"example"`
	Args        map[string]string `json:"args"`
	Required    []string          `json:"required,omitempty"`
}

func runShow(name string, opts *showOptions, registry *md.MacroRegistry) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	mt, ok := registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown macro %q (run 'wmk macro list' to see available macros)", name)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	if opts.stdout != nil {
		renderer.SetWriter(opts.stdout)
	} else {
		renderer.SetWriter(os.Stdout)
	}

	if opts.output == "json" {
		return renderer.RenderJSON(macroJSON{
			Name:        mt.Name,
			Description: mt.Meta.ShortDescription,
			Help:        mt.Meta.HelpText,
			Example:     mt.Meta.ExampleCode,
			Args:        mt.Meta.Args,
			Required:    mt.Required,
		})
	}

	renderer.RenderKeyValue("Name", mt.Name)
	renderer.RenderKeyValue("Description", mt.Meta.ShortDescription)
	renderer.RenderKeyValue("Example", mt.Meta.ExampleCode)
	renderer.RenderText("")
	renderer.RenderText(mt.Meta.HelpText)

	names := mt.ArgNames()
	if len(names) == 0 {
		return nil
	}

	required := make(map[string]bool, len(mt.Required))
	for _, r := range mt.Required {
		required[r] = true
	}

	renderer.RenderText("")
	renderer.RenderSection("Arguments")
	var rows [][]string
	for _, arg := range names {
		flag := ""
		if required[arg] {
			flag = "required"
		}
		rows = append(rows, []string{arg, flag, strings.TrimSpace(mt.Meta.Args[arg])})
	}
	renderer.RenderTable([]string{"ARG", "", "DESCRIPTION"}, rows)
	return nil
}
