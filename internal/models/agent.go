// Package models contains domain types for swarmd entities.
// Persistence lives in internal/adapters/filesystem.
package models

import "time"

// Agent roles
const (
	RoleOrchestrator = "orchestrator"
	RoleWorker       = "worker"
)

// Agent statuses
const (
	AgentStatusWorking = "working"
	AgentStatusIdle    = "idle"
	AgentStatusStopped = "stopped"
)

// Model tiers, ordered by capability.
const (
	TierFast     = "fast"
	TierBalanced = "balanced"
	TierDeep     = "deep"
)

// Agent represents one logical agent instance in the registry.
// The ID is derived externally (worktree path, tmux pane, env) and is
// opaque here. Agents are never hard-deleted; the daemon's stale sweep
// marks them stopped instead.
type Agent struct {
	ID           string    `yaml:"id"`
	Role         string    `yaml:"role"`
	ModelTier    string    `yaml:"model_tier"`
	Status       string    `yaml:"status"`
	PID          int       `yaml:"pid,omitempty"`
	RegisteredAt time.Time `yaml:"registered_at"`
	LastSeenAt   time.Time `yaml:"last_seen_at"`
}

// ValidTier reports whether tier is one of the known model tiers.
func ValidTier(tier string) bool {
	switch tier {
	case TierFast, TierBalanced, TierDeep:
		return true
	}
	return false
}
