package app

import (
	"context"
	"time"

	"github.com/gammazero/workerpool"

	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/ports/secondary"
)

// EmitterImpl implements the HookEmitter interface. Delivery runs on a
// single-worker pool so one process's events reach the log in emission
// order, and Emit waits at most the configured timeout before handing
// control back to the tool-execution path. Whatever happens to the
// delivery after that (slow disk, missing directory, dead daemon), the
// caller has already moved on.
type EmitterImpl struct {
	registry secondary.AgentRegistry
	events   secondary.EventLog
	pool     *workerpool.WorkerPool
	timeout  time.Duration
}

// NewEmitter creates a new HookEmitter with injected dependencies.
func NewEmitter(registry secondary.AgentRegistry, events secondary.EventLog, timeout time.Duration) *EmitterImpl {
	return &EmitterImpl{
		registry: registry,
		events:   events,
		pool:     workerpool.New(1),
		timeout:  timeout,
	}
}

// Emit records one event and touches the agent registry. It never
// returns an error and never blocks past the timeout.
func (e *EmitterImpl) Emit(ctx context.Context, req primary.EmitRequest) error {
	if req.AgentID == "" || req.EventType == "" {
		log.Debug("dropping hook emission without agent id or type")
		return nil
	}

	event := &models.Event{
		Timestamp: time.Now().UTC(),
		Type:      req.EventType,
		AgentID:   req.AgentID,
		PID:       req.PID,
		Metadata:  req.Metadata,
	}

	done := make(chan struct{})
	e.pool.Submit(func() {
		defer close(done)
		if err := e.events.Append(context.Background(), event); err != nil {
			log.Debug("dropped hook event", "type", event.Type, "error", err)
			return
		}
		if _, err := e.registry.Touch(context.Background(), req.AgentID, req.PID); err != nil {
			log.Debug("failed to touch agent registry", "agent", req.AgentID, "error", err)
		}
	})

	select {
	case <-done:
	case <-time.After(e.timeout):
		log.Debug("hook emission timed out", "type", event.Type, "timeout", e.timeout)
	case <-ctx.Done():
	}
	return nil
}

// Drain waits for queued emissions to finish, up to the timeout. Used
// by one-shot CLI invocations so a fast exit doesn't always drop the
// event; long-lived callers never need it.
func (e *EmitterImpl) Drain() {
	done := make(chan struct{})
	go func() {
		e.pool.StopWait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(e.timeout):
	}
}

// Ensure EmitterImpl implements the interface
var _ primary.HookEmitter = (*EmitterImpl)(nil)
