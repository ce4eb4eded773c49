package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/adapters/tmux"
)

// NotifyCmd returns the notify command
func NotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <agent-id> <message...>",
		Short: "Send a message to an agent's tmux session",
		Long: `Type a message into the tmux session named after the agent, followed
by Enter. This is an operator convenience for nudging an interactive
agent; coordination itself never depends on it.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID := args[0]
			message := strings.Join(args[1:], " ")

			notifier, err := tmux.NewNotifier()
			if err != nil {
				return fmt.Errorf("failed to connect to tmux: %w", err)
			}
			if err := notifier.Notify(context.Background(), agentID, message); err != nil {
				return fmt.Errorf("failed to notify %s: %w", agentID, err)
			}

			fmt.Printf("✓ Sent to %s\n", agentID)
			return nil
		},
	}
}
