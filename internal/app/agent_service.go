package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/swarmd/internal/log"
	"github.com/example/swarmd/internal/models"
	"github.com/example/swarmd/internal/ports/primary"
	"github.com/example/swarmd/internal/ports/secondary"
)

// AgentServiceImpl implements the AgentService interface.
type AgentServiceImpl struct {
	registry secondary.AgentRegistry
	events   secondary.EventLog
}

// NewAgentService creates a new AgentService with injected dependencies.
func NewAgentService(registry secondary.AgentRegistry, events secondary.EventLog) *AgentServiceImpl {
	return &AgentServiceImpl{
		registry: registry,
		events:   events,
	}
}

// RegisterAgent announces an agent, creating or replacing its registry
// document. Re-registration keeps the original RegisteredAt.
func (s *AgentServiceImpl) RegisterAgent(ctx context.Context, req primary.RegisterAgentRequest) (*models.Agent, error) {
	if req.AgentID == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleWorker
	}
	if role != models.RoleOrchestrator && role != models.RoleWorker {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	tier := req.ModelTier
	if tier == "" {
		tier = models.TierBalanced
	}
	if !models.ValidTier(tier) {
		return nil, fmt.Errorf("invalid model tier %q", tier)
	}

	now := time.Now().UTC()
	agent := &models.Agent{
		ID:           req.AgentID,
		Role:         role,
		ModelTier:    tier,
		Status:       models.AgentStatusIdle,
		PID:          req.PID,
		RegisteredAt: now,
		LastSeenAt:   now,
	}

	if existing, err := s.registry.Get(ctx, req.AgentID); err == nil {
		agent.RegisteredAt = existing.RegisteredAt
		if existing.LastSeenAt.After(agent.LastSeenAt) {
			agent.LastSeenAt = existing.LastSeenAt
		}
	}

	if err := s.registry.Put(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to register agent: %w", err)
	}

	if err := s.events.Append(ctx, &models.Event{
		Type:    models.EventAgentRegistered,
		AgentID: agent.ID,
		PID:     agent.PID,
		Metadata: map[string]string{
			"role":       agent.Role,
			"model_tier": agent.ModelTier,
		},
	}); err != nil {
		log.Warn("failed to append registration event", "agent", agent.ID, "error", err)
	}

	return agent, nil
}

// GetAgent retrieves an agent by id.
func (s *AgentServiceImpl) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	return s.registry.Get(ctx, agentID)
}

// ListAgents lists all registered agents.
func (s *AgentServiceImpl) ListAgents(ctx context.Context) ([]*models.Agent, error) {
	return s.registry.List(ctx)
}

// SweepStale marks agents not seen within threshold as stopped. Agents
// are kept for audit, never deleted.
func (s *AgentServiceImpl) SweepStale(ctx context.Context, threshold time.Duration) ([]string, error) {
	agents, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents for sweep: %w", err)
	}

	now := time.Now().UTC()
	var swept []string
	for _, agent := range agents {
		if agent.Status == models.AgentStatusStopped {
			continue
		}
		if now.Sub(agent.LastSeenAt) <= threshold {
			continue
		}
		agent.Status = models.AgentStatusStopped
		if err := s.registry.Put(ctx, agent); err != nil {
			log.Warn("failed to mark agent stopped", "agent", agent.ID, "error", err)
			continue
		}
		swept = append(swept, agent.ID)
	}
	return swept, nil
}

// Ensure AgentServiceImpl implements the interface
var _ primary.AgentService = (*AgentServiceImpl)(nil)
