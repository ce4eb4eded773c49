// Package filesystem contains the filesystem-backed adapters: the job
// store, the agent registry, and the event log. The shared state
// directory is the only coordination medium between processes.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/swarmd/internal/models"
)

// Paths resolves the on-disk layout of one state directory:
//
//	agents/<agent-id>.yaml
//	jobs/pending/<job-id>.yaml
//	jobs/claimed/<job-id>.yaml
//	jobs/done/<job-id>.yaml
//	events.log
type Paths struct {
	Root string
}

// AgentsDir returns the agent registry directory.
func (p Paths) AgentsDir() string {
	return filepath.Join(p.Root, "agents")
}

// JobsDir returns the directory backing one job state.
func (p Paths) JobsDir(state string) string {
	return filepath.Join(p.Root, "jobs", state)
}

// EventLogPath returns the event log file path.
func (p Paths) EventLogPath() string {
	return filepath.Join(p.Root, "events.log")
}

// EnsureStateDirs creates the full state directory tree. Safe to call
// from every process on every start.
func (p Paths) EnsureStateDirs() error {
	dirs := []string{
		p.AgentsDir(),
		p.JobsDir(models.JobStatePending),
		p.JobsDir(models.JobStateClaimed),
		p.JobsDir(models.JobStateDone),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state dir %s: %w", dir, err)
		}
	}
	return nil
}

// writeFileAtomic writes data to path via a temp file and rename so
// readers never observe a half-written document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
