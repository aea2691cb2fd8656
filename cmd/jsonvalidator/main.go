// Package main provides the jsonvalidator CLI: a JSON-against-protobuf
// validation server, its companion schema producer, and a load test
// driver.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dataquality/jsonvalidator/cmd/jsonvalidator/commands"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jsonvalidator",
		Short: "Validates JSON payloads against dynamically loaded protobuf schemas",
		Long: `jsonvalidator runs an admission-controlled HTTP service that binds JSON
payloads against protobuf message descriptors uploaded at runtime, with no
compiled Go types required for the target schemas.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.AddCommand(
		commands.NewServeCommand(),
		commands.NewProducerCommand(),
		commands.NewLoadTestCommand(),
		commands.NewVersionCommand(version, commit, buildDate),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
