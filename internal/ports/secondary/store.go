// Package secondary defines the secondary ports (driven adapters) for
// the application: the job store, agent registry, event log, and peer
// notifier the services drive.
package secondary

import (
	"context"
	"errors"

	"github.com/example/swarmd/internal/models"
)

// Sentinel errors shared by store implementations.
var (
	// ErrJobNotFound is returned when no document exists for the id in
	// the requested state.
	ErrJobNotFound = errors.New("job not found")

	// ErrWrongState is returned by Move when the job is not in the
	// source state. In a claim race this is how the loser finds out.
	ErrWrongState = errors.New("job not in expected state")

	// ErrAgentNotFound is returned for unknown agent ids.
	ErrAgentNotFound = errors.New("agent not found")
)

// JobStore defines the secondary port for job persistence. The three
// states are distinct namespaces; a job document lives in exactly one
// at any instant.
type JobStore interface {
	// Push writes a job into pending, assigning ID, CreatedAt, and
	// CreatedBy if absent. Returns the stored job.
	Push(ctx context.Context, job *models.Job) (*models.Job, error)

	// List returns all parseable jobs in a state. Malformed documents
	// are skipped with a warning, never an error.
	List(ctx context.Context, state string) ([]*models.Job, error)

	// Read returns the job with the given id from a state.
	Read(ctx context.Context, id, state string) (*models.Job, error)

	// Move transitions a job between states, applying mutate to the
	// document after the transition. The transition must be atomic with
	// respect to concurrent Move calls on the same id: exactly one
	// caller succeeds, the rest get ErrWrongState.
	Move(ctx context.Context, id, from, to string, mutate func(*models.Job)) (*models.Job, error)

	// DoneSet returns the ids of all jobs in done, for dependency
	// gating.
	DoneSet(ctx context.Context) (map[string]bool, error)
}

// AgentRegistry defines the secondary port for the agent registry.
type AgentRegistry interface {
	// Put writes an agent document, replacing any existing one.
	Put(ctx context.Context, agent *models.Agent) error

	// Get returns the agent with the given id.
	Get(ctx context.Context, id string) (*models.Agent, error)

	// List returns all parseable agent documents.
	List(ctx context.Context) ([]*models.Agent, error)

	// Touch updates LastSeenAt (monotonically) and sets status working.
	// Unknown agents are created with defaults so the first hook
	// emission doubles as registration.
	Touch(ctx context.Context, id string, pid int) (*models.Agent, error)
}
