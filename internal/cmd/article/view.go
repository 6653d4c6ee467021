package article

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
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

type viewOptions struct {
	raw     bool
	html    bool
	web     bool
	offline bool
	output  string
	noColor bool
	stdout  io.Writer
	cfg     *config.Config
	logger  logging.Logger
}

// NewCmdView creates the article view command.
func NewCmdView() *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view <article-id>",
		Short: "View an article",
		Long:  `Fetch an article and render its current revision.`,
		Example: `  # View a rendered article as markdown
  wmk article view 42

  # Show the stored wiki markdown
  wmk article view 42 --raw

  # Print the rendered HTML
  wmk article view 42 --html

  # Open in browser
  wmk article view 42 --web`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()

			cfg, err := cmdutil.LoadConfig(cmd, true)
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
			return runView(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Show the stored wiki markdown")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Show rendered HTML instead of a markdown preview")
	cmd.Flags().BoolVarP(&opts.web, "web", "w", false, "Open in browser instead of displaying")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Skip image and PubMed lookups while rendering")

	return cmd
}

type articleJSON struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Revision int    `json:"revision,omitempty"`
	Content  string `json:"content"`
	HTML     string `json:"html,omitempty"`
}

func runView(ctx context.Context, articleID string, opts *viewOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := render.NewWikiClient(opts.cfg, nil)
	article, err := client.GetArticle(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to get article: %w", err)
	}

	if opts.web {
		return openBrowser(strings.TrimSuffix(opts.cfg.URL, "/") + article.URL)
	}

	out := opts.stdout
	if out == nil {
		out = os.Stdout
	}
	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(out)

	revision := 0
	if article.Revision != nil {
		revision = article.Revision.Number
	}

	var html string
	if !opts.raw && article.Content != "" {
		pipeline := render.NewPipeline(opts.cfg, render.Options{Offline: opts.offline, Logger: opts.logger})
		rendered, err := pipeline.Render(ctx, md.Document{ID: article.ID, Title: article.Title, Content: article.Content})
		if err != nil {
			return fmt.Errorf("failed to render article: %w", err)
		}
		html = rendered.HTML
	}

	if opts.output == "json" {
		return renderer.RenderJSON(articleJSON{
			ID:       article.ID,
			Title:    article.Title,
			URL:      article.URL,
			Revision: revision,
			Content:  article.Content,
			HTML:     html,
		})
	}

	renderer.RenderKeyValue("Title", article.Title)
	renderer.RenderKeyValue("ID", article.ID)
	if revision != 0 {
		renderer.RenderKeyValue("Revision", strconv.Itoa(revision))
	}
	if !article.Modified.IsZero() {
		renderer.RenderKeyValue("Modified", article.Modified.Format("2006-01-02 15:04"))
	}
	if article.Deleted {
		renderer.Warning("This article is marked deleted")
	}
	renderer.RenderText("")

	switch {
	case article.Content == "":
		renderer.RenderText("(No content)")
	case opts.raw:
		renderer.RenderText(article.Content)
	case opts.html:
		renderer.RenderText(strings.TrimRight(html, "\n"))
	default:
		markdown, err := md.ToMarkdown(html)
		if err != nil {
			// Fall back to the HTML if the preview conversion fails
			renderer.RenderText("(Failed to convert to markdown, showing HTML)")
			renderer.RenderText("")
			renderer.RenderText(html)
			return nil
		}
		renderer.RenderText(markdown)
	}

	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
