package configcmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/api"
	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/render"
)

// probePMID is queried to check PubMed reachability.
const probePMID = 7633291

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	var skipPubMed bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity with configured credentials",
		Long:  `Test that wmk can reach your wiki and NCBI E-utilities with the current configuration.`,
		Example: `  # Test connection
  wmk config test

  # Only test the wiki
  wmk config test --skip-pubmed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			cfg, err := cmdutil.LoadConfig(cmd, true)
			if err != nil {
				return err
			}
			return runTest(cmd.Context(), cmd.OutOrStdout(), noColor, skipPubMed, cfg, nil)
		},
	}

	cmd.Flags().BoolVar(&skipPubMed, "skip-pubmed", false, "Skip the PubMed check")

	return cmd
}

func runTest(ctx context.Context, out io.Writer, noColor, skipPubMed bool, cfg *config.Config, httpClient *http.Client) error {
	if noColor {
		color.NoColor = true
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	_, _ = fmt.Fprintf(out, "Testing connection to %s...\n", cfg.URL)

	err := render.NewWikiClient(cfg, httpClient).Ping(ctx)
	switch {
	case err == nil:
		_, _ = green.Fprintln(out, "✓ Wiki API reachable")
	case api.IsAuthError(err):
		_, _ = red.Fprintln(out, "✗ Authentication failed:", err)
		_, _ = fmt.Fprintln(out, "\nCheck your credentials with: wmk config show")
		_, _ = fmt.Fprintln(out, "Reconfigure with: wmk init")
		return fmt.Errorf("authentication failed: %w", err)
	default:
		_, _ = red.Fprintln(out, "✗ Connection failed:", err)
		_, _ = fmt.Fprintln(out, "\nCheck your URL with: wmk config show")
		return fmt.Errorf("connection failed: %w", err)
	}

	if skipPubMed {
		return nil
	}

	_, _ = fmt.Fprintf(out, "Testing PubMed at %s...\n", cfg.PubMed.URL)
	result, err := render.NewPubMedClient(cfg, httpClient).ESummary(ctx, []int{probePMID}, render.NewESummaryOptions(cfg))
	if err != nil {
		_, _ = red.Fprintln(out, "✗ PubMed request failed:", err)
		return fmt.Errorf("pubmed check failed: %w", err)
	}
	if len(result.Summaries) == 0 {
		_, _ = red.Fprintln(out, "✗ PubMed returned no summaries")
		return fmt.Errorf("pubmed check failed: no summary for PMID %d", probePMID)
	}

	_, _ = green.Fprintf(out, "✓ PubMed reachable (%g req/s)\n", cfg.PubMed.Rate)
	return nil
}
