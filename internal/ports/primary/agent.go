package primary

import (
	"context"
	"time"

	"github.com/example/swarmd/internal/models"
)

// AgentService defines the primary port for agent registry operations.
type AgentService interface {
	// RegisterAgent announces an agent, creating or replacing its
	// registry document.
	RegisterAgent(ctx context.Context, req RegisterAgentRequest) (*models.Agent, error)

	// GetAgent retrieves an agent by id.
	GetAgent(ctx context.Context, agentID string) (*models.Agent, error)

	// ListAgents lists all registered agents.
	ListAgents(ctx context.Context) ([]*models.Agent, error)

	// SweepStale marks agents not seen within threshold as stopped and
	// returns the ids it swept. Agents are never deleted.
	SweepStale(ctx context.Context, threshold time.Duration) ([]string, error)
}

// RegisterAgentRequest contains parameters for agent registration.
type RegisterAgentRequest struct {
	AgentID   string
	Role      string
	ModelTier string
	PID       int
}
