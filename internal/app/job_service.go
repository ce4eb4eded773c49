package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/swarmd/internal/core/claim"
	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/ports/secondary"
)

// ErrNotClaimant is returned when completion is attempted by an agent
// other than the recorded claimant.
var ErrNotClaimant = errors.New("job claimed by a different agent")

// JobServiceImpl implements the JobService interface.
type JobServiceImpl struct {
	store  secondary.JobStore
	events secondary.EventLog
}

// NewJobService creates a new JobService with injected dependencies.
func NewJobService(store secondary.JobStore, events secondary.EventLog) *JobServiceImpl {
	return &JobServiceImpl{
		store:  store,
		events: events,
	}
}

// PushJob creates a new job in pending.
func (s *JobServiceImpl) PushJob(ctx context.Context, req primary.PushJobRequest) (*models.Job, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("job title is required")
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		return nil, fmt.Errorf("invalid priority %q", req.Priority)
	}
	if req.Complexity != "" && !models.ValidComplexity(req.Complexity) {
		return nil, fmt.Errorf("invalid complexity %q", req.Complexity)
	}
	if req.ModelTier != "" && !models.ValidTier(req.ModelTier) {
		return nil, fmt.Errorf("invalid model tier %q", req.ModelTier)
	}

	job, err := s.store.Push(ctx, &models.Job{
		CreatedBy:   req.CreatedBy,
		Priority:    req.Priority,
		Complexity:  req.Complexity,
		ModelTier:   req.ModelTier,
		Title:       req.Title,
		Description: req.Description,
		DependsOn:   req.DependsOn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to push job: %w", err)
	}

	s.emit(ctx, models.EventJobPushed, req.CreatedBy, 0, map[string]string{
		"job_id":   job.ID,
		"priority": job.Priority,
	})
	return job, nil
}

// ClaimJob selects and atomically claims at most one eligible pending
// job. Candidates are tried in descending capability-score order; a
// move rejected with ErrWrongState means another agent won that job,
// and the next candidate is tried. Returns nil when none remain.
func (s *JobServiceImpl) ClaimJob(ctx context.Context, req primary.ClaimJobRequest) (*models.Job, error) {
	if req.AgentID == "" {
		return nil, fmt.Errorf("agent id is required")
	}

	pending, err := s.store.List(ctx, models.JobStatePending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}
	done, err := s.store.DoneSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read done set: %w", err)
	}

	for _, candidate := range claim.Rank(pending, done, req.ModelTier) {
		now := time.Now().UTC()
		job, err := s.store.Move(ctx, candidate.ID, models.JobStatePending, models.JobStateClaimed, func(j *models.Job) {
			j.ClaimedBy = req.AgentID
			j.ClaimedAt = now
		})
		if err != nil {
			if errors.Is(err, secondary.ErrWrongState) {
				// Lost the race: another agent moved it first.
				log.Debug("claim race lost", "job", candidate.ID, "agent", req.AgentID)
				continue
			}
			return nil, fmt.Errorf("failed to claim job %s: %w", candidate.ID, err)
		}

		s.emit(ctx, models.EventJobClaimed, req.AgentID, req.PID, map[string]string{
			"job_id": job.ID,
			"title":  job.Title,
		})
		return job, nil
	}

	// No job available. Not an error: callers back off and retry later.
	return nil, nil
}

// CompleteJob moves a claimed job to done. Only the recorded claimant
// may complete it; anyone else is rejected without touching the job.
func (s *JobServiceImpl) CompleteJob(ctx context.Context, req primary.CompleteJobRequest) (*models.Job, error) {
	current, err := s.store.Read(ctx, req.JobID, models.JobStateClaimed)
	if err != nil {
		return nil, fmt.Errorf("failed to complete job %s: %w", req.JobID, err)
	}
	if current.ClaimedBy != req.AgentID {
		log.Warn("completion rejected: caller is not the claimant",
			"job", req.JobID, "claimed_by", current.ClaimedBy, "caller", req.AgentID)
		return nil, fmt.Errorf("%w: %s is claimed by %s", ErrNotClaimant, req.JobID, current.ClaimedBy)
	}

	now := time.Now().UTC()
	job, err := s.store.Move(ctx, req.JobID, models.JobStateClaimed, models.JobStateDone, func(j *models.Job) {
		j.CompletedAt = now
		j.Result = req.Result
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete job %s: %w", req.JobID, err)
	}

	s.emit(ctx, models.EventJobCompleted, req.AgentID, req.PID, map[string]string{
		"job_id": job.ID,
	})
	return job, nil
}

// RequeueJob is the manual operator recovery for an abandoned claim.
// Claims are never released automatically; this is the only path back
// from claimed to pending.
func (s *JobServiceImpl) RequeueJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.store.Move(ctx, jobID, models.JobStateClaimed, models.JobStatePending, func(j *models.Job) {
		j.ClaimedBy = ""
		j.ClaimedAt = time.Time{}
		j.Result = ""
	})
	if err != nil {
		return nil, fmt.Errorf("failed to requeue job %s: %w", jobID, err)
	}

	s.emit(ctx, models.EventJobRequeued, "", 0, map[string]string{"job_id": jobID})
	return job, nil
}

// GetJob finds a job by id in any state.
func (s *JobServiceImpl) GetJob(ctx context.Context, jobID string) (*models.Job, string, error) {
	for _, state := range []string{models.JobStatePending, models.JobStateClaimed, models.JobStateDone} {
		job, err := s.store.Read(ctx, jobID, state)
		if err == nil {
			return job, state, nil
		}
		if !errors.Is(err, secondary.ErrJobNotFound) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%w: %s", secondary.ErrJobNotFound, jobID)
}

// ListJobs lists all parseable jobs in a state.
func (s *JobServiceImpl) ListJobs(ctx context.Context, state string) ([]*models.Job, error) {
	switch state {
	case models.JobStatePending, models.JobStateClaimed, models.JobStateDone:
	default:
		return nil, fmt.Errorf("invalid job state %q", state)
	}
	return s.store.List(ctx, state)
}

// emit appends a coordination event. Event delivery is best-effort:
// a full disk or missing log never fails the job operation itself.
func (s *JobServiceImpl) emit(ctx context.Context, eventType, agentID string, pid int, metadata map[string]string) {
	err := s.events.Append(ctx, &models.Event{
		Type:     eventType,
		AgentID:  agentID,
		PID:      pid,
		Metadata: metadata,
	})
	if err != nil {
		log.Warn("failed to append event", "type", eventType, "error", err)
	}
}

// Ensure JobServiceImpl implements the interface
var _ primary.JobService = (*JobServiceImpl)(nil)
