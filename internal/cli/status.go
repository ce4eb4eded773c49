package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show a point-in-time swarm summary",
		Long: `Display agent and job counts from the shared state directory:
- Registered agents by status
- Jobs by state, with the pending queue listed

This is the one-shot view; run "swarmd daemon" for the live feed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			agents, err := wire.AgentService().ListAgents(ctx)
			if err != nil {
				return fmt.Errorf("failed to list agents: %w", err)
			}

			working, idle, stopped := 0, 0, 0
			for _, agent := range agents {
				switch agent.Status {
				case models.AgentStatusWorking:
					working++
				case models.AgentStatusStopped:
					stopped++
				default:
					idle++
				}
			}

			counts := map[string]int{}
			var pending []*models.Job
			for _, state := range []string{models.JobStatePending, models.JobStateClaimed, models.JobStateDone} {
				jobs, err := wire.JobService().ListJobs(ctx, state)
				if err != nil {
					return fmt.Errorf("failed to list %s jobs: %w", state, err)
				}
				counts[state] = len(jobs)
				if state == models.JobStatePending {
					pending = jobs
				}
			}

			fmt.Printf("Swarm state: %s\n\n", wire.Config().StateDir)

			fmt.Printf("Agents: %d registered (%s working, %s idle, %s stopped)\n",
				len(agents),
				color.GreenString("%d", working),
				color.CyanString("%d", idle),
				color.New(color.Faint).Sprintf("%d", stopped))
			fmt.Printf("Jobs:   %s pending, %s claimed, %s done\n",
				color.YellowString("%d", counts[models.JobStatePending]),
				color.CyanString("%d", counts[models.JobStateClaimed]),
				color.GreenString("%d", counts[models.JobStateDone]))

			if len(pending) > 0 {
				fmt.Println()
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PENDING\tPRIORITY\tTIER\tTITLE")
				for _, job := range pending {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						job.ID, job.Priority, job.RecommendedTier(), job.Title)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
