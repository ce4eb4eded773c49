package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/wire"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage registered agents",
	Long:  "Register agents and inspect the shared agent registry",
}

var agentRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an agent in the shared registry",
	Long: `Announce an agent to the swarm. Registration is optional: an agent
that emits hook events is auto-registered with worker defaults on the
first emission. Explicit registration sets role and model tier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		agentFlag, _ := cmd.Flags().GetString("agent")
		role, _ := cmd.Flags().GetString("role")
		tier, _ := cmd.Flags().GetString("tier")

		agentID, err := resolveAgentID(agentFlag)
		if err != nil {
			return err
		}

		agent, err := wire.AgentService().RegisterAgent(ctx, primary.RegisterAgentRequest{
			AgentID:   agentID,
			Role:      role,
			ModelTier: tier,
			PID:       os.Getpid(),
		})
		if err != nil {
			return fmt.Errorf("failed to register agent: %w", err)
		}

		fmt.Printf("✓ Registered %s (%s, %s tier)\n", agent.ID, agent.Role, agent.ModelTier)
		return nil
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		agents, err := wire.AgentService().ListAgents(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list agents: %w", err)
		}

		if len(agents) == 0 {
			fmt.Println("No agents registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "AGENT\tROLE\tTIER\tSTATUS\tLAST SEEN")
		for _, agent := range agents {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				agent.ID, agent.Role, agent.ModelTier, agent.Status,
				formatAge(agent.LastSeenAt))
		}
		return w.Flush()
	},
}

// formatAge renders a timestamp as a compact "how long ago" string.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	age := time.Since(t).Round(time.Second)
	if age < 0 {
		age = 0
	}
	return fmt.Sprintf("%s ago", age)
}

// AgentCmd returns the agent command with subcommands
func AgentCmd() *cobra.Command {
	agentRegisterCmd.Flags().String("agent", "", "Agent ID (defaults to AGENT_ID env)")
	agentRegisterCmd.Flags().String("role", "", "Agent role (orchestrator, worker)")
	agentRegisterCmd.Flags().String("tier", "", "Model tier (fast, balanced, deep)")

	agentCmd.AddCommand(agentRegisterCmd)
	agentCmd.AddCommand(agentListCmd)
	return agentCmd
}
