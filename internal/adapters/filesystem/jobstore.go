package filesystem

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/secondary"
)

// JobStore implements secondary.JobStore over one directory per state.
// The rename in Move is the mutual-exclusion primitive of the whole
// claim protocol: on a local filesystem exactly one of any number of
// concurrent renames of the same source succeeds, the rest fail with
// ENOENT. There is no lock manager and no check-then-act window.
type JobStore struct {
	paths Paths
}

// NewJobStore creates a job store rooted at the given state directory.
func NewJobStore(stateDir string) *JobStore {
	return &JobStore{paths: Paths{Root: stateDir}}
}

// NewJobID returns a fresh time-ordered job id. ULIDs are unique within
// a host clock tick thanks to their random component, and lexical order
// matches creation order so directory listings come back oldest-first.
func NewJobID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // uniqueness, not secrecy
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return "job-" + id.String()
}

// Push writes a job into pending, assigning ID and CreatedAt if absent.
func (s *JobStore) Push(ctx context.Context, job *models.Job) (*models.Job, error) {
	if err := s.paths.EnsureStateDirs(); err != nil {
		return nil, err
	}

	if job.ID == "" {
		job.ID = NewJobID()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Priority == "" {
		job.Priority = models.PriorityMedium
	}
	if job.Complexity == "" {
		job.Complexity = models.ComplexityModerate
	}

	path := s.jobPath(job.ID, models.JobStatePending)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("job %s already exists in pending", job.ID)
	}

	if err := s.writeJob(path, job); err != nil {
		return nil, err
	}
	return job, nil
}

// List returns all parseable jobs in a state, oldest first. Malformed
// documents are skipped with a warning so one hand-edited file never
// breaks claiming for everyone.
func (s *JobStore) List(ctx context.Context, state string) ([]*models.Job, error) {
	entries, err := os.ReadDir(s.paths.JobsDir(state))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s jobs: %w", state, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	jobs := make([]*models.Job, 0, len(names))
	for _, name := range names {
		job, err := s.readJobFile(filepath.Join(s.paths.JobsDir(state), name))
		if err != nil {
			if os.IsNotExist(err) {
				// Moved between ReadDir and read: someone claimed it.
				continue
			}
			log.Warn("skipping malformed job document", "file", name, "state", state, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Read returns the job with the given id from a state.
func (s *JobStore) Read(ctx context.Context, id, state string) (*models.Job, error) {
	job, err := s.readJobFile(s.jobPath(id, state))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s in %s", secondary.ErrJobNotFound, id, state)
		}
		return nil, err
	}
	return job, nil
}

// Move transitions a job between states. The rename happens first and
// is the atomic acquisition; the mutation is applied to the document
// afterwards, when this process is the only one holding it. A caller
// whose rename fails with ENOENT lost the race (or named a job that
// was never there) and gets ErrWrongState.
func (s *JobStore) Move(ctx context.Context, id, from, to string, mutate func(*models.Job)) (*models.Job, error) {
	if err := s.paths.EnsureStateDirs(); err != nil {
		return nil, err
	}

	src := s.jobPath(id, from)
	dst := s.jobPath(id, to)

	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not in %s", secondary.ErrWrongState, id, from)
		}
		return nil, fmt.Errorf("failed to move job %s: %w", id, err)
	}

	job, err := s.readJobFile(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s after move: %w", id, err)
	}

	if mutate != nil {
		mutate(job)
		if err := s.writeJob(dst, job); err != nil {
			return nil, err
		}
	}
	return job, nil
}

// DoneSet returns the ids of all jobs in done.
func (s *JobStore) DoneSet(ctx context.Context) (map[string]bool, error) {
	entries, err := os.ReadDir(s.paths.JobsDir(models.JobStateDone))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("failed to list done jobs: %w", err)
	}

	done := make(map[string]bool, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			done[name] = true
		}
	}
	return done, nil
}

func (s *JobStore) jobPath(id, state string) string {
	return filepath.Join(s.paths.JobsDir(state), id+".yaml")
}

func (s *JobStore) readJobFile(path string) (*models.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job document: %w", err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("job document %s has no id", filepath.Base(path))
	}
	return &job, nil
}

func (s *JobStore) writeJob(path string, job *models.Job) error {
	data, err := yaml.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write job %s: %w", job.ID, err)
	}
	return nil
}

// Ensure JobStore implements the interface
var _ secondary.JobStore = (*JobStore)(nil)
