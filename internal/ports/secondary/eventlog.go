package secondary

import (
	"context"

	"github.com/example/swarmd/internal/models"
)

// EventLog defines the secondary port for the append-only event stream.
type EventLog interface {
	// Append writes one event record. Append must be safe against
	// concurrent appenders from other processes.
	Append(ctx context.Context, event *models.Event) error

	// ReadFrom returns all complete records appended at or after the
	// byte cursor, plus the cursor to resume from. If the log is
	// shorter than the cursor (truncated or rotated), reading restarts
	// from offset zero without error. Unparsable lines are skipped
	// with a warning.
	ReadFrom(ctx context.Context, cursor int64) ([]*models.Event, int64, error)
}

// Notifier defines the secondary port for interactive peer
// notification. Delivery is best-effort; the coordination core never
// depends on it succeeding.
type Notifier interface {
	// Notify sends a single line of text to the named agent's
	// interactive session, if one can be found.
	Notify(ctx context.Context, agentID, message string) error
}
