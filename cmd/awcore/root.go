package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	listenAddr string
	tmpDir     string
)

var rootCmd = &cobra.Command{
	Use:   "awcore",
	Short: "Agent Wrangler orchestration core",
	Long: `awcore coordinates a population of code-generation agents to
collaboratively mutate a target source tree until its test suite
passes.

Core capabilities:
- Dispatches a task to independent builder agents and selects the
  best candidate patch (best-of-N)
- Layers specialist patches under an architect's plan, accepting only
  non-degrading changes
- Applies unified diffs to a disposable sandbox and runs the target
  project's test suite

Available commands:
  serve      Run the orchestrator HTTP server
  version    Show version information

Use "awcore [command] --help" for more information about a command.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version()
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML policy file")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "address to bind the HTTP server to (overrides policy file)")
	rootCmd.PersistentFlags().StringVar(&tmpDir, "tmpdir", "", "root directory for disposable sandbox workspaces (overrides policy file)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
