// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wmk configuration",
		Long:  `Commands for viewing, testing, and clearing wmk configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

// envVars lists every environment variable the config layer reads.
var envVars = []string{
	"WMK_URL", "WMK_API_TOKEN", "WMK_ASSET_DOMAIN",
	"WMK_PUBMED_API_KEY", "WMK_PUBMED_EMAIL", "WMK_PUBMED_RATE",
	"WMK_LOG_LEVEL", "WMK_LOG_FORMAT",
	"NCBI_API_KEY", "NCBI_EMAIL",
}
