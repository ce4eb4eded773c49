package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/swarmd/internal/adapters/filesystem"
	"github.com/example/swarmd/internal/config"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/secondary"
)

// newTestBackend builds real filesystem adapters over a per-test state
// directory. The services are thin enough that exercising them against
// the real adapters is both simpler and more honest than mocking the
// store semantics.
func newTestBackend(t *testing.T) (*filesystem.JobStore, *filesystem.Registry, *filesystem.EventLog) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, filesystem.Paths{Root: dir}.EnsureStateDirs())
	return filesystem.NewJobStore(dir), filesystem.NewRegistry(dir), filesystem.NewEventLog(dir)
}

// testConfig returns a daemon config with the stale sweep disabled so
// cycle-level tests control exactly what each RunCycle does.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.StaleCheckInterval = 0
	cfg.DetectionCycles = 0
	return cfg
}

func mustPush(t *testing.T, store secondary.JobStore, job *models.Job) *models.Job {
	t.Helper()
	stored, err := store.Push(context.Background(), job)
	require.NoError(t, err)
	return stored
}

// blockingEventLog blocks every Append until the test releases it.
// Used to prove the emitter's latency bound holds when the log hangs.
type blockingEventLog struct {
	release chan struct{}
}

func newBlockingEventLog() *blockingEventLog {
	return &blockingEventLog{release: make(chan struct{})}
}

func (l *blockingEventLog) Append(ctx context.Context, event *models.Event) error {
	<-l.release
	return nil
}

func (l *blockingEventLog) ReadFrom(ctx context.Context, cursor int64) ([]*models.Event, int64, error) {
	return nil, cursor, nil
}

var _ secondary.EventLog = (*blockingEventLog)(nil)

// backdate rewrites an agent's LastSeenAt so sweep tests do not sleep.
func backdate(t *testing.T, registry secondary.AgentRegistry, agentID string, age time.Duration) {
	t.Helper()
	agent, err := registry.Get(context.Background(), agentID)
	require.NoError(t, err)
	agent.LastSeenAt = time.Now().UTC().Add(-age)
	require.NoError(t, registry.Put(context.Background(), agent))
}
