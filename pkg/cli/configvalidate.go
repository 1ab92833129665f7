package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmcaller/llmcaller/pkg/config"
)

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the config file",
	Long: `Load and validate the config file, applying the same discovery,
environment overrides, and file-reference resolution as serve. Prints
the effective provider set on success.`,
	RunE: runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration is valid.\n\nProviders (declaration order):\n")
	for _, p := range cfg.Providers {
		fmt.Printf("  %-12s type=%s model=%s capabilities=%v\n", p.Name, p.Type, p.DefaultModel, p.Capabilities)
	}
	fmt.Printf("\nAuth: %s\n", cfg.Auth.Type)
	if cfg.Auth.RateLimit.Enabled {
		fmt.Printf("Rate limit: %d requests per %s\n", cfg.Auth.RateLimit.MaxRequests, cfg.Auth.RateLimit.Window)
	}
	return nil
}
