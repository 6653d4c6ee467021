// Package init provides the init command for wmk.
package init

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/api"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/render"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		url      string
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize wmk configuration",
		Long: `Initialize wmk with your wiki and PubMed settings.

This command will guide you through setting up your wiki URL, API token
and NCBI E-utilities identification. The configuration will be saved to
~/.config/wmk/config.yml.

An NCBI API key is optional. Without one PubMed lookups are limited to
3 requests per second, with one to 10. Keys are issued from the account
settings page of https://www.ncbi.nlm.nih.gov/account/.`,
		Example: `  # Interactive setup
  wmk init

  # Pre-populate URL
  wmk init --url https://wiki.example.org`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(url, noVerify)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Wiki URL (e.g., https://wiki.example.org)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip connection verification")

	return cmd
}

func runInit(prefillURL string, noVerify bool) error {
	configPath := config.DefaultConfigPath()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{URL: prefillURL}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Wiki URL").
				Description("Base URL of the wiki articles and assets are served from").
				Placeholder("https://wiki.example.org").
				Value(&cfg.URL).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("URL is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("API Token (optional)").
				Description("Sent as a bearer token to the wiki API").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIToken),

			huh.NewInput().
				Title("Asset Domain (optional)").
				Description("Prefix for image URLs; defaults to the wiki URL").
				Placeholder("https://media.example.org").
				Value(&cfg.AssetDomain),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("NCBI API Key (optional)").
				Description("Raises the PubMed rate limit from 3 to 10 requests per second").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.PubMed.APIKey),

			huh.NewInput().
				Title("Contact Email (optional)").
				Description("Sent with PubMed requests so NCBI can reach you about problems").
				Placeholder("you@example.com").
				Value(&cfg.PubMed.Email),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.NormalizeURL()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Verify connection unless skipped
	if !noVerify {
		fmt.Print("Verifying connection... ")
		if err := verifyConnection(cfg); err != nil {
			fmt.Println("failed!")
			return fmt.Errorf("connection verification failed: %w", err)
		}
		fmt.Println("success!")
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	fmt.Println("\nYou're all set! Try running:")
	fmt.Println("  wmk macro list")
	fmt.Println("  wmk render article.md")

	return nil
}

func verifyConnection(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withDefaults := *cfg
	withDefaults.ApplyDefaults()

	client := render.NewWikiClient(&withDefaults, &http.Client{Timeout: 10 * time.Second})
	err := client.Ping(ctx)
	if err == nil {
		return nil
	}

	var apiErr *api.ErrorResponse
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("authentication failed - check your API token")
	case http.StatusForbidden:
		return fmt.Errorf("access denied - check your permissions")
	default:
		return fmt.Errorf("unexpected status code: %d", apiErr.StatusCode)
	}
}
