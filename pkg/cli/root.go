// Package cli implements the llmcaller command-line interface using
// Cobra.
package cli

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "llmcaller",
	Short: "llmcaller - provider-agnostic AI inference gateway",
	Long: `llmcaller is a gateway that exposes one canonical API for chat,
streaming chat, and embeddings across heterogeneous AI providers.

Callers speak a single request shape; the gateway routes each request
to the best configured provider, normalizes streaming output, and maps
every upstream failure into a closed error taxonomy.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, /etc/llmcaller/config.yaml)")
}
