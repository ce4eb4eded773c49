package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/swarmd/internal/models"
)

func TestAppendAndReadFrom(t *testing.T) {
	eventLog := NewEventLog(t.TempDir())
	ctx := context.Background()

	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventToolEdit, AgentID: "agent-1", PID: 100}))
	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventGitCommit, AgentID: "agent-2"}))

	events, cursor, err := eventLog.ReadFrom(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventToolEdit, events[0].Type)
	assert.Equal(t, "agent-1", events[0].AgentID)
	assert.Equal(t, 100, events[0].PID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Greater(t, cursor, int64(0))

	// Nothing new: cursor stable, no events re-delivered.
	events, cursor2, err := eventLog.ReadFrom(ctx, cursor)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, cursor, cursor2)

	// One more append is delivered exactly once from the old cursor.
	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventTestPassed, AgentID: "agent-1"}))
	events, _, err = eventLog.ReadFrom(ctx, cursor)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTestPassed, events[0].Type)
}

func TestReadFromMissingLog(t *testing.T) {
	eventLog := NewEventLog(filepath.Join(t.TempDir(), "empty"))

	events, cursor, err := eventLog.ReadFrom(context.Background(), 4096)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, int64(0), cursor)
}

func TestReadFromDetectsTruncation(t *testing.T) {
	dir := t.TempDir()
	eventLog := NewEventLog(dir)
	ctx := context.Background()

	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventToolBash, AgentID: "agent-1"}))
	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventToolRead, AgentID: "agent-1"}))

	_, cursor, err := eventLog.ReadFrom(ctx, 0)
	require.NoError(t, err)

	// Truncate to zero bytes behind the reader's back.
	require.NoError(t, os.Truncate(filepath.Join(dir, "events.log"), 0))
	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventTestFailed, AgentID: "agent-2"}))

	events, newCursor, err := eventLog.ReadFrom(ctx, cursor)
	require.NoError(t, err)
	require.Len(t, events, 1, "reader must reset to offset 0 and see the post-truncation record")
	assert.Equal(t, models.EventTestFailed, events[0].Type)
	assert.Less(t, newCursor, cursor)
}

func TestReadFromLeavesPartialLine(t *testing.T) {
	dir := t.TempDir()
	eventLog := NewEventLog(dir)
	ctx := context.Background()

	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventToolEdit, AgentID: "agent-1"}))

	// Simulate a writer caught mid-append: bytes but no newline yet.
	f, err := os.OpenFile(filepath.Join(dir, "events.log"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"event":"TOOL_`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, cursor, err := eventLog.ReadFrom(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// The partial tail was not consumed; completing it delivers it.
	f, err = os.OpenFile(filepath.Join(dir, "events.log"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("EDIT\",\"agent_id\":\"agent-2\",\"timestamp\":\"2026-01-10T12:00:00Z\"}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, _, err = eventLog.ReadFrom(ctx, cursor)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "agent-2", events[0].AgentID)
}

func TestReadFromSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	eventLog := NewEventLog(dir)
	ctx := context.Background()

	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventToolEdit, AgentID: "agent-1"}))

	f, err := os.OpenFile(filepath.Join(dir, "events.log"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("this is not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, eventLog.Append(ctx, &models.Event{Type: models.EventGitCommit, AgentID: "agent-1"}))

	events, _, err := eventLog.ReadFrom(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventToolEdit, events[0].Type)
	assert.Equal(t, models.EventGitCommit, events[1].Type)
}
