package cli

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/llmcaller/llmcaller/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gateway configuration",
}

var initOutput string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a config file",
	Long: `Interactively create a gateway config file.

Prompts for one provider and optional caller-token auth. API keys are
read without echo and written to the config file, which is created with
owner-only permissions. Edit the file afterwards to add providers or
tune routing.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "output file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(initOutput); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", initOutput)
	}

	in := bufio.NewReader(os.Stdin)
	cfg := config.Defaults()

	name, err := prompt(in, "Provider name", "openai")
	if err != nil {
		return err
	}
	ptype, err := prompt(in, "Provider type (openai, anthropic, lmstudio)", "openai")
	if err != nil {
		return err
	}
	if !slices.Contains([]string{"openai", "anthropic", "lmstudio"}, ptype) {
		return fmt.Errorf("unknown provider type %q", ptype)
	}

	baseURL, err := prompt(in, "Base URL", defaultBaseURL(ptype))
	if err != nil {
		return err
	}
	model, err := prompt(in, "Default model", "")
	if err != nil {
		return err
	}
	if model == "" {
		return fmt.Errorf("default model is required")
	}

	pcfg := config.ProviderConfig{
		Name:         name,
		Type:         ptype,
		BaseURL:      baseURL,
		DefaultModel: model,
		Capabilities: []string{"chat", "chatStream"},
	}
	if ptype != "anthropic" {
		pcfg.Capabilities = append(pcfg.Capabilities, "embed")
	}

	if ptype != "lmstudio" {
		key, err := promptSecret(in, fmt.Sprintf("API key (blank to use $%s)", pcfg.SecretName()))
		if err != nil {
			return err
		}
		pcfg.APIKey = key
	}
	cfg.Providers = []config.ProviderConfig{pcfg}

	useToken, err := prompt(in, "Require a caller token? (y/N)", "n")
	if err != nil {
		return err
	}
	if strings.EqualFold(useToken, "y") || strings.EqualFold(useToken, "yes") {
		caller, err := prompt(in, "Caller name", "default")
		if err != nil {
			return err
		}
		token, err := promptSecret(in, "Caller token")
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("caller token cannot be empty")
		}
		cfg.Auth.Type = "token"
		cfg.Auth.Tokens = []config.CallerToken{{Token: token, Caller: caller}}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(initOutput); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n\nNext steps:\n", initOutput)
	if pcfg.APIKey == "" && ptype != "lmstudio" {
		fmt.Printf("  export %s=<your-key>\n", pcfg.SecretName())
	}
	fmt.Printf("  llmcaller serve --config %s\n", initOutput)
	return nil
}

func prompt(in *bufio.Reader, label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Printf("%s [%s]: ", label, fallback)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, err := in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// promptSecret reads a value without echo when stdin is a terminal,
// falling back to a plain line read for piped input.
func promptSecret(in *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func defaultBaseURL(ptype string) string {
	switch ptype {
	case "openai":
		return "https://api.openai.com"
	case "anthropic":
		return "https://api.anthropic.com"
	case "lmstudio":
		return "http://localhost:1234"
	}
	return ""
}
