package configcmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current wmk configuration with value source indicators.`,
		Example: `  # Show current config
  wmk config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(cmd.OutOrStdout(), noColor)
		},
	}

	return cmd
}

func runShow(out io.Writer, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	configPath := config.DefaultConfigPath()

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue string, vars ...string) {
		_, _ = bold.Fprintf(out, "%-16s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(out, "-")
			return
		}

		_, _ = fmt.Fprint(out, maskSecret(label, value))

		source := "default"
		if fileValue != "" && fileValue == value {
			source = "config"
		}
		for _, envVar := range vars {
			if v := os.Getenv(envVar); v != "" && v == value {
				source = envVar
				break
			}
		}

		_, _ = dim.Fprintf(out, "  (source: %s)\n", source)
	}

	printField("URL", cfg.URL, strings.TrimSuffix(fileCfg.URL, "/"), "WMK_URL")
	printField("API Token", cfg.APIToken, fileCfg.APIToken, "WMK_API_TOKEN")
	printField("Asset Domain", cfg.AssetDomain, fileCfg.AssetDomain, "WMK_ASSET_DOMAIN")
	printField("Asset Path", cfg.AssetPath, fileCfg.AssetPath)
	printField("PubMed URL", cfg.PubMed.URL, fileCfg.PubMed.URL)
	printField("PubMed API Key", cfg.PubMed.APIKey, fileCfg.PubMed.APIKey, "WMK_PUBMED_API_KEY", "NCBI_API_KEY")
	printField("PubMed Email", cfg.PubMed.Email, fileCfg.PubMed.Email, "WMK_PUBMED_EMAIL", "NCBI_EMAIL")
	printField("PubMed Rate", formatRate(cfg.PubMed.Rate), formatRate(fileCfg.PubMed.Rate), "WMK_PUBMED_RATE")
	printField("Log Level", cfg.Log.Level, fileCfg.Log.Level, "WMK_LOG_LEVEL")
	printField("Log Format", cfg.Log.Format, fileCfg.Log.Format, "WMK_LOG_FORMAT")

	sizes := cfg.Sizes()
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintln(out)
	_, _ = bold.Fprintln(out, "Thumbnail sizes:")
	for _, name := range names {
		size := sizes[name]
		if size == "" {
			size = "original"
		}
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", name, size)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}

// maskSecret hides the middle of token and key values.
func maskSecret(label, value string) string {
	lower := strings.ToLower(label)
	if !strings.Contains(lower, "token") && !strings.Contains(lower, "key") {
		return value
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

func formatRate(rate float64) string {
	if rate == 0 {
		return ""
	}
	return fmt.Sprintf("%g req/s", rate)
}
