package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/primary"
)

func TestEmitDeliversEventAndTouchesAgent(t *testing.T) {
	_, registry, events := newTestBackend(t)
	emitter := NewEmitter(registry, events, 100*time.Millisecond)
	ctx := context.Background()

	err := emitter.Emit(ctx, primary.EmitRequest{
		AgentID:   "worker-1",
		PID:       777,
		EventType: models.EventToolEdit,
		Metadata:  map[string]string{"tool": "Edit"},
	})
	require.NoError(t, err)
	emitter.Drain()

	logged, _, err := events.ReadFrom(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, models.EventToolEdit, logged[0].Type)
	assert.Equal(t, "worker-1", logged[0].AgentID)
	assert.Equal(t, 777, logged[0].PID)
	assert.False(t, logged[0].Timestamp.IsZero())

	// Emission doubles as a liveness signal. The unknown agent was
	// created by the touch, marked working.
	agent, err := registry.Get(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, models.AgentStatusWorking, agent.Status)
	assert.Equal(t, 777, agent.PID)
}

func TestEmitReturnsWithinBoundWhenLogBlocks(t *testing.T) {
	_, registry, _ := newTestBackend(t)
	blocked := newBlockingEventLog()
	emitter := NewEmitter(registry, blocked, 50*time.Millisecond)

	start := time.Now()
	err := emitter.Emit(context.Background(), primary.EmitRequest{
		AgentID:   "worker-1",
		EventType: models.EventToolBash,
	})
	elapsed := time.Since(start)

	// Always nil, and back well before the log unblocks.
	require.NoError(t, err)
	assert.Less(t, elapsed, 500*time.Millisecond)

	close(blocked.release)
}

func TestEmitDropsIncompleteRequests(t *testing.T) {
	_, registry, events := newTestBackend(t)
	emitter := NewEmitter(registry, events, 100*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, emitter.Emit(ctx, primary.EmitRequest{EventType: models.EventToolBash}))
	require.NoError(t, emitter.Emit(ctx, primary.EmitRequest{AgentID: "worker-1"}))
	emitter.Drain()

	logged, _, err := events.ReadFrom(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, logged)
}

func TestEmitPreservesPerProcessOrder(t *testing.T) {
	_, registry, events := newTestBackend(t)
	emitter := NewEmitter(registry, events, time.Second)
	ctx := context.Background()

	types := []string{
		models.EventAgentWorkStart,
		models.EventToolRead,
		models.EventToolEdit,
		models.EventTestStarted,
		models.EventTestPassed,
		models.EventGitCommit,
	}
	for _, eventType := range types {
		require.NoError(t, emitter.Emit(ctx, primary.EmitRequest{AgentID: "worker-1", EventType: eventType}))
	}
	emitter.Drain()

	logged, _, err := events.ReadFrom(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logged, len(types))
	for i, eventType := range types {
		assert.Equal(t, eventType, logged[i].Type)
	}
}
