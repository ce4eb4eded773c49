package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/swarmd/internal/config"
	"github.com/example/swarmd/internal/core/detection"
	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/ports/secondary"
)

// Daemon is the long-running coordination monitor. It is strictly a
// reader: it never claims or completes jobs, and agents never wait on
// it. Per poll cycle it drains new events, updates agent liveness,
// optionally renders activity, heartbeats when idle, sweeps stale
// agents, and periodically hands recent events to the detector.
type Daemon struct {
	store    secondary.JobStore
	registry secondary.AgentRegistry
	events   secondary.EventLog
	agents   primary.AgentService
	detector detection.Detector
	cfg      *config.Config

	// out receives rendered lines. Rendering only happens when
	// interactive is true; a piped daemon persists and stays silent.
	out         io.Writer
	interactive bool
}

// State carries the daemon's loop state. It is an explicit value, not
// process state, so tests can run many isolated daemon instances.
type State struct {
	Cursor         int64
	Cycle          int
	LastActivity   time.Time
	LastHeartbeat  time.Time
	LastStaleSweep time.Time

	// window of events drained since the last detection pass.
	window []*models.Event
}

// NewDaemon creates a daemon over the given ports. detector may be nil
// for the no-op default.
func NewDaemon(
	store secondary.JobStore,
	registry secondary.AgentRegistry,
	events secondary.EventLog,
	agents primary.AgentService,
	detector detection.Detector,
	cfg *config.Config,
	out io.Writer,
	interactive bool,
) *Daemon {
	if detector == nil {
		detector = detection.Noop{}
	}
	return &Daemon{
		store:       store,
		registry:    registry,
		events:      events,
		agents:      agents,
		detector:    detector,
		cfg:         cfg,
		out:         out,
		interactive: interactive,
	}
}

// NewState returns loop state positioned at the start of the log.
func NewState() *State {
	now := time.Now().UTC()
	return &State{
		LastActivity:   now,
		LastHeartbeat:  now,
		LastStaleSweep: now,
	}
}

// Run polls until the context is cancelled. Individual cycle failures
// are logged and absorbed; the loop itself only ends with the context.
func (d *Daemon) Run(ctx context.Context) error {
	st := NewState()
	ticker := time.NewTicker(time.Duration(d.cfg.PollInterval))
	defer ticker.Stop()

	d.RunCycle(ctx, st)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.RunCycle(ctx, st)
		}
	}
}

// RunCycle executes one poll cycle against the given state.
func (d *Daemon) RunCycle(ctx context.Context, st *State) {
	now := time.Now().UTC()

	drained := d.drainEvents(ctx, st)
	if len(drained) > 0 {
		st.LastActivity = now
		st.LastHeartbeat = now
		st.window = append(st.window, drained...)
	} else if d.interactive &&
		now.Sub(st.LastActivity) >= time.Duration(d.cfg.HeartbeatInterval) &&
		now.Sub(st.LastHeartbeat) >= time.Duration(d.cfg.HeartbeatInterval) {
		d.renderHeartbeat(ctx, now)
		st.LastHeartbeat = now
	}

	if interval := time.Duration(d.cfg.StaleCheckInterval); interval > 0 && now.Sub(st.LastStaleSweep) >= interval {
		if swept, err := d.agents.SweepStale(ctx, time.Duration(d.cfg.LivenessThreshold)); err != nil {
			log.Warn("stale-agent sweep failed", "error", err)
		} else if len(swept) > 0 {
			log.Info("marked stale agents stopped", "agents", swept)
		}
		st.LastStaleSweep = now
	}

	st.Cycle++
	if d.cfg.DetectionCycles > 0 && st.Cycle%d.cfg.DetectionCycles == 0 {
		d.runDetection(st)
	}
}

// drainEvents reads everything appended since the cursor, updates the
// registry per event, and renders when interactive.
func (d *Daemon) drainEvents(ctx context.Context, st *State) []*models.Event {
	events, cursor, err := d.events.ReadFrom(ctx, st.Cursor)
	if err != nil {
		log.Warn("failed to drain event log", "error", err)
		return nil
	}
	st.Cursor = cursor

	for _, event := range events {
		if event.AgentID != "" {
			if _, err := d.registry.Touch(ctx, event.AgentID, event.PID); err != nil {
				log.Warn("failed to touch agent", "agent", event.AgentID, "error", err)
			}
			if event.Type == models.EventModelChanged {
				d.applyModelChange(ctx, event)
			}
		}
		if d.interactive {
			d.renderEvent(event)
		}
	}
	return events
}

// applyModelChange updates the registered tier when an agent reports
// switching models mid-session.
func (d *Daemon) applyModelChange(ctx context.Context, event *models.Event) {
	tier := event.Metadata["model_tier"]
	if !models.ValidTier(tier) {
		return
	}
	agent, err := d.registry.Get(ctx, event.AgentID)
	if err != nil {
		return
	}
	if agent.ModelTier == tier {
		return
	}
	agent.ModelTier = tier
	if err := d.registry.Put(ctx, agent); err != nil {
		log.Warn("failed to update agent tier", "agent", event.AgentID, "error", err)
	}
}

// runDetection hands the accumulated window to the detector. The
// detector is best-effort: errors and panics are logged, never fatal.
func (d *Daemon) runDetection(st *State) {
	window := st.window
	st.window = nil

	defer func() {
		if r := recover(); r != nil {
			log.Warn("detector panicked", "panic", r)
		}
	}()

	findings, err := d.detector.Analyze(window)
	if err != nil {
		log.Warn("detector failed", "error", err)
		return
	}
	for _, finding := range findings {
		log.Info("pattern detected", "agent", finding.AgentID, "summary", finding.Summary)
	}
}

// Event line colors, by classification.
var (
	jobColor   = color.New(color.FgCyan)
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	gitColor   = color.New(color.FgYellow)
	agentColor = color.New(color.FgMagenta)
	dimColor   = color.New(color.Faint)
)

// renderEvent writes one classified, time-stamped line. fatih/color
// drops the escape codes on its own when output is not a terminal, so
// redirected interactive runs still produce plain text.
func (d *Daemon) renderEvent(event *models.Event) {
	line := fmt.Sprintf("%s  %-20s %s%s",
		event.Timestamp.Local().Format("15:04:05"),
		event.AgentID,
		event.Type,
		formatMetadata(event.Metadata),
	)

	c := classify(event.Type)
	if c == nil {
		fmt.Fprintln(d.out, line)
		return
	}
	c.Fprintln(d.out, line)
}

func classify(eventType string) *color.Color {
	switch eventType {
	case models.EventJobPushed, models.EventJobClaimed, models.EventJobCompleted, models.EventJobRequeued:
		return jobColor
	case models.EventTestPassed:
		return passColor
	case models.EventTestFailed:
		return failColor
	case models.EventGitCommit:
		return gitColor
	case models.EventAgentRegistered, models.EventAgentWorkStart, models.EventModelChanged:
		return agentColor
	}
	return nil
}

func formatMetadata(metadata map[string]string) string {
	// Stable, compact: only the keys the dashboard cares about.
	out := ""
	for _, key := range []string{"job_id", "title", "tool", "role", "model_tier"} {
		if v, ok := metadata[key]; ok && v != "" {
			out += fmt.Sprintf("  %s=%s", key, v)
		}
	}
	return out
}

// renderHeartbeat prints a single idle status line with point-in-time
// agent and job counts.
func (d *Daemon) renderHeartbeat(ctx context.Context, now time.Time) {
	working := 0
	if agents, err := d.registry.List(ctx); err == nil {
		for _, agent := range agents {
			if agent.Status == models.AgentStatusWorking {
				working++
			}
		}
	}

	pending, claimed := 0, 0
	if jobs, err := d.store.List(ctx, models.JobStatePending); err == nil {
		pending = len(jobs)
	}
	if jobs, err := d.store.List(ctx, models.JobStateClaimed); err == nil {
		claimed = len(jobs)
	}

	dimColor.Fprintf(d.out, "%s  -- idle: %d agents working, %d pending, %d claimed --\n",
		now.Local().Format("15:04:05"), working, pending, claimed)
}
