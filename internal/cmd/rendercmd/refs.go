package rendercmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/logging"
	"github.com/open-cli-collective/wikimark/internal/render"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/md"
)

type refsOptions struct {
	offline bool
	output  string
	noColor bool
	stdin   io.Reader
	stdout  io.Writer
	cfg     *config.Config
	logger  logging.Logger
}

// NewCmdRefs creates the refs command.
func NewCmdRefs() *cobra.Command {
	opts := &refsOptions{}

	cmd := &cobra.Command{
		Use:   "refs <file|->",
		Short: "List the references of a document",
		Long: `List the numbered references of a wiki markdown document.

PubMed IDs are looked up in a single E-utilities request; use --offline to
list the references without citation data.`,
		Example: `  # List references
  wmk refs article.md

  # As JSON
  wmk refs article.md -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()

			cfg, err := cmdutil.LoadConfig(cmd, false)
			if err != nil {
				return err
			}
			logger, err := cmdutil.NewLogger(cmd, cfg)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.output = cmdutil.OutputFormat(cmd, cfg)
			opts.logger = logger
			return runRefs(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Skip PubMed lookups")

	return cmd
}

func runRefs(ctx context.Context, source string, opts *refsOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	content, err := cmdutil.ReadSource(source, opts.stdin)
	if err != nil {
		return err
	}

	var citations md.CitationSource
	if !opts.offline {
		citations = render.NewPubMedCitationSource(opts.cfg, nil)
	}
	resolver := md.NewReferenceResolver(citations, logging.Module(opts.logger, "refs"))

	_, refs, err := resolver.ResolveText(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to resolve references: %w", err)
	}

	out := opts.stdout
	if out == nil {
		out = os.Stdout
	}
	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(out)

	rows := referenceRows(refs)
	if opts.output == "json" {
		return renderer.RenderJSON(rows)
	}

	if len(rows) == 0 {
		renderer.RenderText("No references found.")
		return nil
	}

	headers := []string{"#", "ID", "PMID", "CITATION"}
	var table [][]string
	for _, row := range rows {
		pmid := ""
		if row.PMID != 0 {
			pmid = strconv.Itoa(row.PMID)
		}
		table = append(table, []string{
			strconv.Itoa(row.Number),
			row.ID,
			pmid,
			view.Truncate(strings.TrimSpace(row.Citation), 80),
		})
	}
	renderer.RenderTable(headers, table)
	return nil
}
