// Package detection provides the pluggable analysis stage the daemon
// runs periodically over recently drained events. The exact analysis is
// deployment-specific; the daemon only requires that a detector never
// blocks the poll loop and that its failures are non-fatal.
package detection

import "github.com/example/swarmd/internal/models"

// Finding is one observation a detector wants surfaced. The daemon
// logs findings; it takes no action on them.
type Finding struct {
	Summary string
	AgentID string
}

// Detector analyzes a window of recent events.
type Detector interface {
	// Analyze inspects events drained since the previous analysis pass.
	// Returned findings are logged by the daemon. Errors are logged and
	// otherwise ignored.
	Analyze(events []*models.Event) ([]Finding, error)
}

// Noop is the default detector. It observes nothing.
type Noop struct{}

// Analyze implements Detector.
func (Noop) Analyze(events []*models.Event) ([]Finding, error) {
	return nil, nil
}

// Func adapts a plain function to the Detector interface.
type Func func(events []*models.Event) ([]Finding, error)

// Analyze implements Detector.
func (f Func) Analyze(events []*models.Event) ([]Finding, error) {
	return f(events)
}

var _ Detector = Noop{}
var _ Detector = Func(nil)
