package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/wire"
)

// DaemonCmd returns the daemon command
func DaemonCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the coordination monitor",
		Long: `Poll the shared event log and render agent activity live. The daemon
is an observer: agents coordinate through the filesystem and never wait
on it, so it can be stopped and restarted at any time.

Per poll cycle it drains new events, tracks agent liveness, prints a
heartbeat when the swarm is quiet, marks agents that have gone silent
as stopped, and periodically analyzes recent activity for patterns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := !quiet && isatty.IsTerminal(os.Stdout.Fd())

			daemon := wire.Daemon(nil, os.Stdout, interactive)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if interactive {
				fmt.Printf("Watching %s (Ctrl-C to stop)\n", wire.Config().StateDir)
			}
			if err := daemon.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("daemon stopped: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress rendering even on a terminal")
	return cmd
}
