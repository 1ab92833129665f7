// Command llmcaller runs the provider-agnostic AI inference gateway.
//
// See `llmcaller --help` for commands and `llmcaller config init` to
// generate a starting configuration.
package main

import (
	"os"

	"github.com/llmcaller/llmcaller/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
