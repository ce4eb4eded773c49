package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/secondary"
)

// Registry implements secondary.AgentRegistry with one YAML document
// per agent. Documents are rewritten atomically; last writer wins,
// which is fine because every writer is the agent itself or the
// daemon's sweep.
type Registry struct {
	paths Paths
}

// NewRegistry creates an agent registry rooted at the state directory.
func NewRegistry(stateDir string) *Registry {
	return &Registry{paths: Paths{Root: stateDir}}
}

// Put writes an agent document, replacing any existing one.
func (r *Registry) Put(ctx context.Context, agent *models.Agent) error {
	if err := r.paths.EnsureStateDirs(); err != nil {
		return err
	}
	return r.writeAgent(agent)
}

// Get returns the agent with the given id.
func (r *Registry) Get(ctx context.Context, id string) (*models.Agent, error) {
	agent, err := r.readAgentFile(r.agentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", secondary.ErrAgentNotFound, id)
		}
		return nil, err
	}
	return agent, nil
}

// List returns all parseable agent documents, sorted by id.
func (r *Registry) List(ctx context.Context) ([]*models.Agent, error) {
	entries, err := os.ReadDir(r.paths.AgentsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	agents := make([]*models.Agent, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		agent, err := r.readAgentFile(filepath.Join(r.paths.AgentsDir(), e.Name()))
		if err != nil {
			log.Warn("skipping malformed agent document", "file", e.Name(), "error", err)
			continue
		}
		agents = append(agents, agent)
	}

	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents, nil
}

// Touch updates LastSeenAt and marks the agent working. An unknown
// agent is created with defaults so the first hook emission doubles as
// registration. LastSeenAt never moves backwards.
func (r *Registry) Touch(ctx context.Context, id string, pid int) (*models.Agent, error) {
	if err := r.paths.EnsureStateDirs(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	agent, err := r.readAgentFile(r.agentPath(id))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		agent = &models.Agent{
			ID:           id,
			Role:         models.RoleWorker,
			ModelTier:    models.TierBalanced,
			RegisteredAt: now,
		}
	}

	if now.After(agent.LastSeenAt) {
		agent.LastSeenAt = now
	}
	agent.Status = models.AgentStatusWorking
	if pid != 0 {
		agent.PID = pid
	}

	if err := r.writeAgent(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (r *Registry) agentPath(id string) string {
	return filepath.Join(r.paths.AgentsDir(), id+".yaml")
}

func (r *Registry) readAgentFile(path string) (*models.Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var agent models.Agent
	if err := yaml.Unmarshal(data, &agent); err != nil {
		return nil, fmt.Errorf("failed to parse agent document: %w", err)
	}
	if agent.ID == "" {
		return nil, fmt.Errorf("agent document %s has no id", filepath.Base(path))
	}
	return &agent, nil
}

func (r *Registry) writeAgent(agent *models.Agent) error {
	data, err := yaml.Marshal(agent)
	if err != nil {
		return fmt.Errorf("failed to marshal agent %s: %w", agent.ID, err)
	}
	if err := writeFileAtomic(r.agentPath(agent.ID), data); err != nil {
		return fmt.Errorf("failed to write agent %s: %w", agent.ID, err)
	}
	return nil
}

// Ensure Registry implements the interface
var _ secondary.AgentRegistry = (*Registry)(nil)
