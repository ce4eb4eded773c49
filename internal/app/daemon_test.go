package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/swarmd/internal/adapters/filesystem"
	"github.com/example/swarmd/internal/core/detection"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/primary"
)

func plainColors(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func appendEvent(t *testing.T, events *filesystem.EventLog, event *models.Event) {
	t.Helper()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	require.NoError(t, events.Append(context.Background(), event))
}

func TestRunCycleDrainsAndTouchesAgents(t *testing.T) {
	plainColors(t)
	store, registry, events := newTestBackend(t)
	var out bytes.Buffer
	daemon := NewDaemon(store, registry, events, NewAgentService(registry, events), nil, testConfig(), &out, true)
	st := NewState()
	ctx := context.Background()

	appendEvent(t, events, &models.Event{Type: models.EventToolEdit, AgentID: "worker-1", PID: 99,
		Metadata: map[string]string{"tool": "Edit"}})
	appendEvent(t, events, &models.Event{Type: models.EventGitCommit, AgentID: "worker-2"})

	daemon.RunCycle(ctx, st)

	// Both previously unknown agents now exist and read as working.
	first, err := registry.Get(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, models.AgentStatusWorking, first.Status)
	assert.Equal(t, 99, first.PID)
	_, err = registry.Get(ctx, "worker-2")
	require.NoError(t, err)

	rendered := out.String()
	assert.Contains(t, rendered, "TOOL_EDIT")
	assert.Contains(t, rendered, "tool=Edit")
	assert.Contains(t, rendered, "GIT_COMMIT")

	// A second cycle resumes from the cursor instead of re-rendering.
	out.Reset()
	daemon.RunCycle(ctx, st)
	assert.Empty(t, out.String())
}

func TestRunCycleSilentWhenNotInteractive(t *testing.T) {
	store, registry, events := newTestBackend(t)
	var out bytes.Buffer
	daemon := NewDaemon(store, registry, events, NewAgentService(registry, events), nil, testConfig(), &out, false)
	st := NewState()
	ctx := context.Background()

	appendEvent(t, events, &models.Event{Type: models.EventToolBash, AgentID: "worker-1"})
	daemon.RunCycle(ctx, st)

	// Liveness tracking still happens, rendering does not.
	_, err := registry.Get(ctx, "worker-1")
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunCycleAppliesModelChange(t *testing.T) {
	store, registry, events := newTestBackend(t)
	agents := NewAgentService(registry, events)
	daemon := NewDaemon(store, registry, events, agents, nil, testConfig(), os.Stderr, false)
	st := NewState()
	ctx := context.Background()

	_, err := agents.RegisterAgent(ctx, primary.RegisterAgentRequest{AgentID: "worker-1", ModelTier: models.TierFast})
	require.NoError(t, err)

	appendEvent(t, events, &models.Event{Type: models.EventModelChanged, AgentID: "worker-1",
		Metadata: map[string]string{"model_tier": models.TierDeep}})
	appendEvent(t, events, &models.Event{Type: models.EventModelChanged, AgentID: "worker-1",
		Metadata: map[string]string{"model_tier": "turbo"}})

	daemon.RunCycle(ctx, st)

	agent, err := registry.Get(ctx, "worker-1")
	require.NoError(t, err)
	// The valid change applied, the bogus tier was ignored.
	assert.Equal(t, models.TierDeep, agent.ModelTier)
}

func TestRunCycleSurvivesLogTruncation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, filesystem.Paths{Root: dir}.EnsureStateDirs())
	store := filesystem.NewJobStore(dir)
	registry := filesystem.NewRegistry(dir)
	events := filesystem.NewEventLog(dir)
	daemon := NewDaemon(store, registry, events, NewAgentService(registry, events), nil, testConfig(), os.Stderr, false)
	st := NewState()
	ctx := context.Background()

	appendEvent(t, events, &models.Event{Type: models.EventToolRead, AgentID: "worker-1"})
	daemon.RunCycle(ctx, st)
	require.Greater(t, st.Cursor, int64(0))

	// Operator rotates the log out from under the daemon.
	require.NoError(t, os.Truncate(filesystem.Paths{Root: dir}.EventLogPath(), 0))
	appendEvent(t, events, &models.Event{Type: models.EventToolBash, AgentID: "worker-2"})

	daemon.RunCycle(ctx, st)

	// The post-truncation event was seen from the reset cursor.
	_, err := registry.Get(ctx, "worker-2")
	require.NoError(t, err)
}

func TestRunCycleHeartbeatWhenIdle(t *testing.T) {
	plainColors(t)
	store, registry, events := newTestBackend(t)
	var out bytes.Buffer
	daemon := NewDaemon(store, registry, events, NewAgentService(registry, events), nil, testConfig(), &out, true)
	ctx := context.Background()

	mustPush(t, store, &models.Job{Title: "waiting work"})

	st := NewState()
	past := time.Now().UTC().Add(-time.Hour)
	st.LastActivity = past
	st.LastHeartbeat = past

	daemon.RunCycle(ctx, st)

	assert.Contains(t, out.String(), "1 pending")
	assert.Contains(t, out.String(), "0 claimed")
	// The heartbeat stamp advanced so the next idle cycle stays quiet.
	out.Reset()
	daemon.RunCycle(ctx, st)
	assert.Empty(t, out.String())
}

func TestRunCycleSweepsStaleAgents(t *testing.T) {
	store, registry, events := newTestBackend(t)
	agents := NewAgentService(registry, events)
	cfg := testConfig()
	cfg.StaleCheckInterval = cfg.PollInterval
	daemon := NewDaemon(store, registry, events, agents, nil, cfg, os.Stderr, false)
	ctx := context.Background()

	_, err := agents.RegisterAgent(ctx, primary.RegisterAgentRequest{AgentID: "gone"})
	require.NoError(t, err)

	// First cycle consumes the registration event so the later cycle's
	// drain does not refresh the agent's liveness.
	st := NewState()
	daemon.RunCycle(ctx, st)

	backdate(t, registry, "gone", time.Hour)
	st.LastStaleSweep = time.Now().UTC().Add(-time.Hour)
	daemon.RunCycle(ctx, st)

	agent, err := registry.Get(ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, models.AgentStatusStopped, agent.Status)
}

func TestRunCycleDetectionWindow(t *testing.T) {
	store, registry, events := newTestBackend(t)
	cfg := testConfig()
	cfg.DetectionCycles = 2

	var windows [][]*models.Event
	detector := detection.Func(func(drained []*models.Event) ([]detection.Finding, error) {
		windows = append(windows, drained)
		return []detection.Finding{{Summary: "repeated test failures", AgentID: "worker-1"}}, nil
	})
	daemon := NewDaemon(store, registry, events, NewAgentService(registry, events), detector, cfg, os.Stderr, false)
	st := NewState()
	ctx := context.Background()

	appendEvent(t, events, &models.Event{Type: models.EventTestFailed, AgentID: "worker-1"})
	daemon.RunCycle(ctx, st)
	require.Empty(t, windows)

	appendEvent(t, events, &models.Event{Type: models.EventTestFailed, AgentID: "worker-1"})
	daemon.RunCycle(ctx, st)

	// Detection fired on the second cycle with both drained events,
	// and the window was handed off rather than accumulated again.
	require.Len(t, windows, 1)
	assert.Len(t, windows[0], 2)

	daemon.RunCycle(ctx, st)
	daemon.RunCycle(ctx, st)
	require.Len(t, windows, 2)
	assert.Empty(t, windows[1])
}

func TestRunCycleSurvivesDetectorFailure(t *testing.T) {
	store, registry, events := newTestBackend(t)
	cfg := testConfig()
	cfg.DetectionCycles = 1

	calls := 0
	detector := detection.Func(func([]*models.Event) ([]detection.Finding, error) {
		calls++
		if calls == 1 {
			panic("detector bug")
		}
		return nil, errors.New("analysis failed")
	})
	daemon := NewDaemon(store, registry, events, NewAgentService(registry, events), detector, cfg, os.Stderr, false)
	st := NewState()
	ctx := context.Background()

	// Neither the panic nor the error stops the loop.
	daemon.RunCycle(ctx, st)
	daemon.RunCycle(ctx, st)
	assert.Equal(t, 2, calls)

	appendEvent(t, events, &models.Event{Type: models.EventToolEdit, AgentID: "worker-1"})
	daemon.RunCycle(ctx, st)
	_, err := registry.Get(ctx, "worker-1")
	require.NoError(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store, registry, events := newTestBackend(t)
	cfg := testConfig()
	cfg.PollInterval = cfg.HookTimeout
	daemon := NewDaemon(store, registry, events, NewAgentService(registry, events), nil, cfg, os.Stderr, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop on cancel")
	}
}
