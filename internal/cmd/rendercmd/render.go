// Package rendercmd provides the render and refs commands.
package rendercmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/logging"
	"github.com/open-cli-collective/wikimark/internal/render"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/md"
)

type renderOptions struct {
	format    string
	articleID string
	title     string
	offline   bool
	output    string
	noColor   bool
	stdin     io.Reader
	stdout    io.Writer
	cfg       *config.Config
	logger    logging.Logger
}

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <file|->",
		Short: "Render wiki markdown to HTML",
		Long: `Render a wiki markdown document to HTML.

Image, macro and reference directives are expanded before the markdown is
rendered. Images and article lists are fetched from the configured wiki and
PubMed citations from NCBI E-utilities unless --offline is set.`,
		Example: `  # Render a file
  wmk render article.md

  # Render stdin as a markdown preview
  cat article.md | wmk render - --format markdown

  # Resolve [article_list] against article 42
  wmk render article.md --article 42

  # Render without network access
  wmk render article.md --offline`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()

			cfg, err := cmdutil.LoadConfig(cmd, !opts.offline)
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
			return runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "html", "Output format: html, markdown")
	cmd.Flags().StringVar(&opts.articleID, "article", "", "Article ID the document belongs to")
	cmd.Flags().StringVar(&opts.title, "title", "", "Document title (defaults to the file name)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Skip image, article and PubMed lookups")

	return cmd
}

func runRender(ctx context.Context, source string, opts *renderOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if opts.format != "html" && opts.format != "markdown" {
		return fmt.Errorf("invalid format %q: must be html or markdown", opts.format)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	content, err := cmdutil.ReadSource(source, opts.stdin)
	if err != nil {
		return err
	}

	title := opts.title
	if title == "" && source != "-" {
		title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	pipeline := render.NewPipeline(opts.cfg, render.Options{Offline: opts.offline, Logger: opts.logger})
	rendered, err := pipeline.Render(ctx, md.Document{ID: opts.articleID, Title: title, Content: content})
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", source, err)
	}

	out := opts.stdout
	if out == nil {
		out = os.Stdout
	}
	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(out)

	body := rendered.HTML
	if opts.format == "markdown" {
		body, err = md.ToMarkdown(rendered.HTML)
		if err != nil {
			return fmt.Errorf("failed to convert to markdown: %w", err)
		}
	}

	if opts.output == "json" {
		return renderer.RenderJSON(documentJSON{
			Title:      title,
			Format:     opts.format,
			Body:       body,
			Headings:   rendered.Headings,
			References: referenceRows(rendered.References),
		})
	}

	renderer.RenderText(strings.TrimRight(body, "\n"))
	return nil
}

type documentJSON struct {
	Title      string          `json:"title,omitempty"`
	Format     string          `json:"format"`
	Body       string          `json:"body"`
	Headings   []md.Heading    `json:"headings"`
	References []referenceJSON `json:"references"`
}

type referenceJSON struct {
	Number   int    `json:"number"`
	ID       string `json:"id"`
	PMID     int    `json:"pmid,omitempty"`
	Citation string `json:"citation"`
}

func referenceRows(refs *md.ReferenceList) []referenceJSON {
	rows := []referenceJSON{}
	if refs == nil {
		return rows
	}
	for _, ref := range refs.Entries() {
		rows = append(rows, referenceJSON{
			Number:   ref.Number,
			ID:       ref.ID,
			PMID:     ref.PMID,
			Citation: strings.TrimPrefix(md.FormatReference(ref), fmt.Sprintf("%d.", ref.Number)),
		})
	}
	return rows
}
