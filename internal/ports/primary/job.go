// Package primary defines the primary ports (driving interfaces) for
// the application services.
package primary

import (
	"context"

	"github.com/example/swarmd/internal/models"
)

// JobService defines the primary port for job operations.
type JobService interface {
	// PushJob creates a new job in pending.
	PushJob(ctx context.Context, req PushJobRequest) (*models.Job, error)

	// ClaimJob selects and atomically claims at most one eligible
	// pending job for the agent. Returns nil (no error) when no job is
	// available.
	ClaimJob(ctx context.Context, req ClaimJobRequest) (*models.Job, error)

	// CompleteJob moves a claimed job to done. Only the recorded
	// claimant may complete it.
	CompleteJob(ctx context.Context, req CompleteJobRequest) (*models.Job, error)

	// RequeueJob is the manual operator recovery for abandoned claims:
	// claimed back to pending with the claim stamps cleared.
	RequeueJob(ctx context.Context, jobID string) (*models.Job, error)

	// GetJob finds a job by id in any state, returning the state it
	// was found in.
	GetJob(ctx context.Context, jobID string) (*models.Job, string, error)

	// ListJobs lists all parseable jobs in a state.
	ListJobs(ctx context.Context, state string) ([]*models.Job, error)
}

// PushJobRequest contains parameters for creating a job.
type PushJobRequest struct {
	CreatedBy   string
	Priority    string
	Complexity  string
	ModelTier   string
	Title       string
	Description string
	DependsOn   []string
}

// ClaimJobRequest identifies the claiming agent.
type ClaimJobRequest struct {
	AgentID   string
	ModelTier string
	PID       int
}

// CompleteJobRequest contains parameters for completing a job.
type CompleteJobRequest struct {
	JobID   string
	AgentID string
	PID     int
	Result  string
}
