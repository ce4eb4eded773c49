package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/adapters/filesystem"
	"github.com/example/swarmd/internal/config"
	"github.com/example/swarmd/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var writeConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the coordination state directory",
		Long: `Create the shared state directory tree used by all agents:

  agents/        one YAML document per registered agent
  jobs/pending/  jobs waiting to be claimed
  jobs/claimed/  jobs currently being worked
  jobs/done/     completed jobs
  events.log     append-only JSONL event stream

Every command creates missing directories on demand, so init is only
needed to set things up explicitly or to write a starter config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()

			if err := (filesystem.Paths{Root: cfg.StateDir}).EnsureStateDirs(); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
			fmt.Printf("✓ State directory ready at %s\n", cfg.StateDir)

			if writeConfig {
				if err := config.SaveConfig(".", cfg); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Println("✓ Config written to .swarmd/config.json")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  swarmd agent register --agent my-agent")
			fmt.Println("  swarmd job push \"My first job\"")
			fmt.Println("  swarmd daemon")
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Also write .swarmd/config.json with current settings")
	return cmd
}
