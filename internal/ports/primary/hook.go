package primary

import "context"

// HookEmitter defines the primary port for hook emission. Emit is
// called from inside an agent's tool-execution path and must return
// within its configured timeout regardless of daemon or filesystem
// state; delivery is best-effort, fire-and-forget.
type HookEmitter interface {
	// Emit records one event and touches the agent registry. It always
	// returns nil to its caller; failures are logged at debug level
	// and dropped.
	Emit(ctx context.Context, req EmitRequest) error
}

// EmitRequest describes one hook emission.
type EmitRequest struct {
	AgentID   string
	PID       int
	EventType string
	Metadata  map[string]string
}
