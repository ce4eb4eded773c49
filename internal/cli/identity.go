package cli

import (
	"fmt"
	"os"
)

// resolveAgentID returns the explicit flag value if set, otherwise the
// AGENT_ID environment variable. Hook chains run with AGENT_ID exported
// so the flag is mostly for humans.
func resolveAgentID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("AGENT_ID"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no agent identity: use --agent or set AGENT_ID")
}
