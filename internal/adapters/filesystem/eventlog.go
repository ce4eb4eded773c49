package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/secondary"
)

// EventLog implements secondary.EventLog as a single append-only JSONL
// file. Appends take an advisory file lock so records from concurrent
// processes never interleave mid-line; single-writer ordering within a
// process comes from O_APPEND. Readers need no lock: they only consume
// complete lines.
type EventLog struct {
	paths Paths
}

// NewEventLog creates an event log rooted at the state directory.
func NewEventLog(stateDir string) *EventLog {
	return &EventLog{paths: Paths{Root: stateDir}}
}

// Append writes one event record.
func (l *EventLog) Append(ctx context.Context, event *models.Event) error {
	if err := l.paths.EnsureStateDirs(); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	lock := flock.New(l.paths.EventLogPath() + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock event log: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck // nothing to do on unlock failure

	f, err := os.OpenFile(l.paths.EventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// ReadFrom returns all complete records at or after the byte cursor
// and the cursor to resume from. A log shorter than the cursor means
// truncation or rotation; the cursor resets to zero and reading starts
// over, never erroring. A trailing partial line (a writer mid-append)
// is left for the next call.
func (l *EventLog) ReadFrom(ctx context.Context, cursor int64) ([]*models.Event, int64, error) {
	f, err := os.Open(l.paths.EventLogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, cursor, fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, cursor, fmt.Errorf("failed to stat event log: %w", err)
	}

	if info.Size() < cursor {
		log.Warn("event log shorter than cursor, assuming truncation", "size", info.Size(), "cursor", cursor)
		cursor = 0
	}
	if info.Size() == cursor {
		return nil, cursor, nil
	}

	if _, err := f.Seek(cursor, io.SeekStart); err != nil {
		return nil, cursor, fmt.Errorf("failed to seek event log: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, cursor, fmt.Errorf("failed to read event log: %w", err)
	}

	// Consume only whole lines; a partial tail stays for next time.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, cursor, nil
	}
	complete := data[:end+1]

	var events []*models.Event
	for _, line := range bytes.Split(complete, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var event models.Event
		if err := json.Unmarshal(line, &event); err != nil {
			log.Warn("skipping malformed event record", "error", err)
			continue
		}
		events = append(events, &event)
	}

	return events, cursor + int64(len(complete)), nil
}

// Ensure EventLog implements the interface
var _ secondary.EventLog = (*EventLog)(nil)
