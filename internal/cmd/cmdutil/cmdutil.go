// Package cmdutil holds helpers shared by the wmk subcommands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/logging"
)

// LoadConfig loads the config file named by --config (or the default path)
// with environment overrides. When requireURL is false a config without a wiki
// URL is accepted, which is enough for offline renders.
func LoadConfig(cmd *cobra.Command, requireURL bool) (*config.Config, error) {
	path := config.DefaultConfigPath()
	if cmd != nil {
		if p, _ := cmd.Flags().GetString("config"); p != "" {
			path = p
		}
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'wmk init' to configure)", err)
	}

	if requireURL || cfg.URL != "" {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w (run 'wmk init' to configure)", err)
		}
	}

	return cfg, nil
}

// OutputFormat returns the --output flag when it was given, else the
// configured output_format, else the flag default.
func OutputFormat(cmd *cobra.Command, cfg *config.Config) string {
	flag := cmd.Flags().Lookup("output")
	if flag != nil && flag.Changed {
		return flag.Value.String()
	}
	if cfg != nil && cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	if flag != nil {
		return flag.Value.String()
	}
	return ""
}

// NewLogger builds the logger selected by cfg.Log. A --verbose flag forces
// debug level.
func NewLogger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, error) {
	lc := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if cmd != nil {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			lc.Level = "debug"
		}
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}
	return logger, nil
}

// ReadSource reads a markdown source. "-" reads from stdin.
func ReadSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}
