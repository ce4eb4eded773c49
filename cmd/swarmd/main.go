package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/cli"
	"github.com/example/swarmd/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "swarmd",
		Short:   "swarmd - filesystem-mediated swarm coordination",
		Version: version.String(),
		Long: `swarmd coordinates a swarm of coding agents through a shared state
directory: a YAML job queue with atomic claims, an append-only event
log, and a live monitoring daemon. Agents and operators share one
binary; no server is required.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.AgentCmd())
	rootCmd.AddCommand(cli.JobCmd())
	rootCmd.AddCommand(cli.HookCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.DaemonCmd())
	rootCmd.AddCommand(cli.NotifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
