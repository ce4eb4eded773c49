package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/wire"
)

// HookCmd returns the hook command, the entry point agent tool hooks
// call on every tool use.
func HookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook <event-type>",
		Short: "Emit a coordination event from an agent hook",
		Long: `Record one event in the shared event log and refresh this agent's
liveness. Designed to sit inside an agent's tool-execution hook chain:
it reads optional JSON metadata from stdin, never blocks past the
configured timeout, always exits 0, and always prints {} so the chain
continues no matter what happened to delivery.

Example:
  echo '{"tool":"Edit"}' | AGENT_ID=worker-1 swarmd hook TOOL_EDIT`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runHook(args[0])
			// The hook contract: a parseable response, exit 0, always.
			fmt.Println("{}")
		},
	}
}

func runHook(eventType string) {
	agentID, err := resolveAgentID("")
	if err != nil {
		// No identity, nothing to record. Fail open.
		return
	}

	// Metadata is optional; garbage on stdin is ignored, not fatal.
	var metadata map[string]string
	if data, err := io.ReadAll(os.Stdin); err == nil && len(data) > 0 {
		var raw map[string]any
		if json.Unmarshal(data, &raw) == nil {
			metadata = make(map[string]string, len(raw))
			for k, v := range raw {
				if s, ok := v.(string); ok {
					metadata[k] = s
				}
			}
		}
	}

	emitter := wire.Emitter()
	_ = emitter.Emit(context.Background(), primary.EmitRequest{
		AgentID:   agentID,
		PID:       os.Getppid(),
		EventType: eventType,
		Metadata:  metadata,
	})
	// One-shot process: give the queued write its bounded chance to
	// land before exit.
	emitter.Drain()
}
