package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/secondary"
)

func TestPutAndGetAgent(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	ctx := context.Background()

	agent := &models.Agent{
		ID:           "agent-1",
		Role:         models.RoleWorker,
		ModelTier:    models.TierBalanced,
		Status:       models.AgentStatusIdle,
		RegisteredAt: time.Now().UTC(),
		LastSeenAt:   time.Now().UTC(),
	}
	require.NoError(t, registry.Put(ctx, agent))

	got, err := registry.Get(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorker, got.Role)
	assert.Equal(t, models.TierBalanced, got.ModelTier)
}

func TestGetUnknownAgent(t *testing.T) {
	registry := NewRegistry(t.TempDir())

	_, err := registry.Get(context.Background(), "agent-ghost")
	assert.ErrorIs(t, err, secondary.ErrAgentNotFound)
}

func TestTouchCreatesUnknownAgent(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	ctx := context.Background()

	agent, err := registry.Touch(ctx, "agent-new", 4242)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorker, agent.Role)
	assert.Equal(t, models.AgentStatusWorking, agent.Status)
	assert.Equal(t, 4242, agent.PID)
	assert.False(t, agent.LastSeenAt.IsZero())
}

func TestTouchLastSeenMonotonic(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	ctx := context.Background()

	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, registry.Put(ctx, &models.Agent{
		ID:         "agent-1",
		Role:       models.RoleWorker,
		ModelTier:  models.TierFast,
		Status:     models.AgentStatusStopped,
		LastSeenAt: future,
	}))

	agent, err := registry.Touch(ctx, "agent-1", 0)
	require.NoError(t, err)
	assert.Equal(t, future, agent.LastSeenAt, "last_seen_at must never move backwards")
	assert.Equal(t, models.AgentStatusWorking, agent.Status)
	assert.Equal(t, models.TierFast, agent.ModelTier, "touch must not clobber registered fields")
}

func TestListSkipsMalformedAgents(t *testing.T) {
	dir := t.TempDir()
	registry := NewRegistry(dir)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, &models.Agent{ID: "agent-b", Role: models.RoleWorker}))
	require.NoError(t, registry.Put(ctx, &models.Agent{ID: "agent-a", Role: models.RoleOrchestrator}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agents", "broken.yaml"), []byte(":::"), 0644))

	agents, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "agent-a", agents[0].ID)
	assert.Equal(t, "agent-b", agents[1].ID)
}
