package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/wire"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage jobs (units of delegated work)",
	Long:  "Push, claim, complete, and inspect jobs in the shared queue",
}

var jobPushCmd = &cobra.Command{
	Use:   "push [title]",
	Short: "Push a new job onto the pending queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title := strings.Join(args, " ")
		agentFlag, _ := cmd.Flags().GetString("agent")
		priority, _ := cmd.Flags().GetString("priority")
		complexity, _ := cmd.Flags().GetString("complexity")
		tier, _ := cmd.Flags().GetString("tier")
		description, _ := cmd.Flags().GetString("description")
		dependsOn, _ := cmd.Flags().GetStringSlice("depends-on")

		// Pushing is allowed without identity; CreatedBy is advisory.
		createdBy, _ := resolveAgentID(agentFlag)

		job, err := wire.JobService().PushJob(ctx, primary.PushJobRequest{
			CreatedBy:   createdBy,
			Priority:    priority,
			Complexity:  complexity,
			ModelTier:   tier,
			Title:       title,
			Description: description,
			DependsOn:   dependsOn,
		})
		if err != nil {
			return fmt.Errorf("failed to push job: %w", err)
		}

		fmt.Printf("✓ Pushed %s: %s\n", job.ID, job.Title)
		fmt.Printf("  Priority: %s, complexity: %s, tier: %s\n",
			job.Priority, job.Complexity, job.RecommendedTier())
		if len(job.DependsOn) > 0 {
			fmt.Printf("  Depends on: %s\n", strings.Join(job.DependsOn, ", "))
		}
		return nil
	},
}

var jobClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the best eligible pending job",
	Long: `Atomically claim at most one pending job for this agent. Jobs are
ranked by priority and by how well their recommended model tier matches
the agent's tier; jobs with unfinished dependencies are skipped.

Exits 0 with "no job available" when the queue has nothing eligible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		agentFlag, _ := cmd.Flags().GetString("agent")
		tier, _ := cmd.Flags().GetString("tier")

		agentID, err := resolveAgentID(agentFlag)
		if err != nil {
			return err
		}
		if tier == "" {
			if agent, err := wire.AgentService().GetAgent(ctx, agentID); err == nil {
				tier = agent.ModelTier
			}
		}

		job, err := wire.JobService().ClaimJob(ctx, primary.ClaimJobRequest{
			AgentID:   agentID,
			ModelTier: tier,
			PID:       os.Getpid(),
		})
		if err != nil {
			return fmt.Errorf("failed to claim job: %w", err)
		}
		if job == nil {
			fmt.Println("No job available.")
			return nil
		}

		fmt.Printf("✓ Claimed %s: %s\n", job.ID, job.Title)
		if job.Description != "" {
			fmt.Printf("  %s\n", job.Description)
		}
		return nil
	},
}

var jobCompleteCmd = &cobra.Command{
	Use:   "complete [job-id]",
	Short: "Complete a claimed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		agentFlag, _ := cmd.Flags().GetString("agent")
		result, _ := cmd.Flags().GetString("result")

		agentID, err := resolveAgentID(agentFlag)
		if err != nil {
			return err
		}

		job, err := wire.JobService().CompleteJob(ctx, primary.CompleteJobRequest{
			JobID:   args[0],
			AgentID: agentID,
			PID:     os.Getpid(),
			Result:  result,
		})
		if err != nil {
			return fmt.Errorf("failed to complete job: %w", err)
		}

		fmt.Printf("✓ Completed %s: %s\n", job.ID, job.Title)
		return nil
	},
}

var jobRequeueCmd = &cobra.Command{
	Use:   "requeue [job-id]",
	Short: "Return a claimed job to the pending queue",
	Long: `Manual recovery for a claim abandoned by a crashed or stalled agent.
Claims are never released automatically; an operator decides when a
claimed job goes back to pending.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := wire.JobService().RequeueJob(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to requeue job: %w", err)
		}
		fmt.Printf("✓ Requeued %s: %s\n", job.ID, job.Title)
		return nil
	},
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs in a state",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _ := cmd.Flags().GetString("state")

		jobs, err := wire.JobService().ListJobs(context.Background(), state)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		if len(jobs) == 0 {
			fmt.Printf("No %s jobs.\n", state)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "JOB\tPRIORITY\tTIER\tTITLE\tCLAIMED BY")
		for _, job := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				job.ID, job.Priority, job.RecommendedTier(), job.Title, job.ClaimedBy)
		}
		return w.Flush()
	},
}

var jobShowCmd = &cobra.Command{
	Use:   "show [job-id]",
	Short: "Show one job in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, state, err := wire.JobService().GetJob(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to show job: %w", err)
		}

		fmt.Printf("%s [%s]\n", job.ID, state)
		fmt.Printf("  Title:      %s\n", job.Title)
		if job.Description != "" {
			fmt.Printf("  Description: %s\n", job.Description)
		}
		fmt.Printf("  Priority:   %s\n", job.Priority)
		fmt.Printf("  Complexity: %s\n", job.Complexity)
		fmt.Printf("  Tier:       %s\n", job.RecommendedTier())
		if job.CreatedBy != "" {
			fmt.Printf("  Created by: %s\n", job.CreatedBy)
		}
		fmt.Printf("  Created at: %s\n", job.CreatedAt.Local())
		if len(job.DependsOn) > 0 {
			fmt.Printf("  Depends on: %s\n", strings.Join(job.DependsOn, ", "))
		}
		if job.ClaimedBy != "" {
			fmt.Printf("  Claimed by: %s at %s\n", job.ClaimedBy, job.ClaimedAt.Local())
		}
		if state == models.JobStateDone {
			fmt.Printf("  Completed:  %s\n", job.CompletedAt.Local())
			if job.Result != "" {
				fmt.Printf("  Result:     %s\n", job.Result)
			}
		}
		return nil
	},
}

// JobCmd returns the job command with subcommands
func JobCmd() *cobra.Command {
	jobPushCmd.Flags().String("agent", "", "Pushing agent ID (defaults to AGENT_ID env)")
	jobPushCmd.Flags().StringP("priority", "p", "", "Priority (low, medium, high)")
	jobPushCmd.Flags().String("complexity", "", "Complexity (simple, moderate, complex)")
	jobPushCmd.Flags().String("tier", "", "Recommended model tier (fast, balanced, deep)")
	jobPushCmd.Flags().StringP("description", "d", "", "Job description")
	jobPushCmd.Flags().StringSlice("depends-on", nil, "Job IDs that must be done first")

	jobClaimCmd.Flags().String("agent", "", "Claiming agent ID (defaults to AGENT_ID env)")
	jobClaimCmd.Flags().String("tier", "", "Agent model tier (defaults to registered tier)")

	jobCompleteCmd.Flags().String("agent", "", "Completing agent ID (defaults to AGENT_ID env)")
	jobCompleteCmd.Flags().StringP("result", "r", "", "Result summary")

	jobListCmd.Flags().StringP("state", "s", models.JobStatePending, "Job state (pending, claimed, done)")

	jobCmd.AddCommand(jobPushCmd)
	jobCmd.AddCommand(jobClaimCmd)
	jobCmd.AddCommand(jobCompleteCmd)
	jobCmd.AddCommand(jobRequeueCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobShowCmd)
	return jobCmd
}
