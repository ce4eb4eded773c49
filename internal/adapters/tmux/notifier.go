// Package tmux contains the tmux-backed peer notifier. An agent that
// runs inside a tmux session named after its agent id can receive
// operator or peer messages injected directly into its prompt.
package tmux

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/swarmd/internal/ports/secondary"
)

// Notifier implements secondary.Notifier over a local tmux server.
type Notifier struct {
	tmux *gotmux.Tmux
}

// NewNotifier connects to the default tmux server.
func NewNotifier() (*Notifier, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tmux: %w", err)
	}
	return &Notifier{tmux: t}, nil
}

// Notify types the message into the first pane of the session named
// after the agent, followed by Enter. The message text is passed as a
// single send-keys argument so it needs no shell quoting.
func (n *Notifier) Notify(ctx context.Context, agentID, message string) error {
	sessions, err := n.tmux.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list tmux sessions: %w", err)
	}

	found := false
	for _, s := range sessions {
		if s.Name == agentID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no tmux session for agent %s", agentID)
	}

	cmd := exec.CommandContext(ctx, "tmux", "send-keys", "-t", agentID, message, "C-m")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send keys to session %s: %w", agentID, err)
	}
	return nil
}

var _ secondary.Notifier = (*Notifier)(nil)
